package ath

import (
	"fmt"
	"strings"
)

// TableName is the external table over one season's combined Parquet.
func TableName(season int) string { return fmt.Sprintf("nfl_offensive_combined_%d", season) }

// BuildDrop returns a DROP TABLE IF EXISTS for the season table.
func BuildDrop(db string, season int) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s.%s", db, TableName(season))
}

// BuildCreateExternal declares the combined schema over location
// (s3://bucket/prefix/combined/season=YYYY/). Column names match the Parquet
// field names written by the store package.
func BuildCreateExternal(db string, season int, location string) string {
	if !strings.HasSuffix(location, "/") {
		location += "/"
	}
	return fmt.Sprintf(`
CREATE EXTERNAL TABLE %s.%s (
  player_clean     string,
  team             string,
  age              double,
  g                double,
  position_group   string,
  yards_per_game   double,
  touches_per_game double,
  efficiency       double,
  big_play_ability double,
  turnover_rate    double
)
STORED AS PARQUET
LOCATION '%s'
TBLPROPERTIES ('parquet.compression'='SNAPPY')`, db, TableName(season), location)
}

func BuildCount(db string, season int) string {
	return fmt.Sprintf(`SELECT COUNT(*) AS c FROM %s.%s`, db, TableName(season))
}

func BuildPerGroupCounts(db string, season int) string {
	return fmt.Sprintf(`
SELECT position_group, COUNT(*) AS players
FROM %s.%s
GROUP BY position_group
ORDER BY position_group`, db, TableName(season))
}
