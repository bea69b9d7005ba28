package store

import (
	"bytes"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/tyler180/nfl-archetypes/internal/frame"
)

// CombinedRecord is the Parquet row of the combined dataset. Columns the
// combined schema dropped are written as nulls.
type CombinedRecord struct {
	PlayerClean    *string  `parquet:"player_clean,optional"`
	Team           *string  `parquet:"team,optional"`
	Age            *float64 `parquet:"age,optional"`
	G              *float64 `parquet:"g,optional"`
	PositionGroup  string   `parquet:"position_group"`
	YardsPerGame   *float64 `parquet:"yards_per_game,optional"`
	TouchesPerGame *float64 `parquet:"touches_per_game,optional"`
	Efficiency     *float64 `parquet:"efficiency,optional"`
	BigPlayAbility *float64 `parquet:"big_play_ability,optional"`
	TurnoverRate   *float64 `parquet:"turnover_rate,optional"`
}

// CombinedRecords converts the combined frame row by row.
func CombinedRecords(df *frame.Frame) []CombinedRecord {
	out := make([]CombinedRecord, 0, df.Len())
	df.Each(func(r frame.Record) {
		out = append(out, CombinedRecord{
			PlayerClean:    strPtr(r.Get("Player_Clean")),
			Team:           strPtr(r.Get("Team")),
			Age:            numPtr(r.Get("Age")),
			G:              numPtr(r.Get("G")),
			PositionGroup:  r.Text("Position_Group"),
			YardsPerGame:   numPtr(r.Get("Yards_Per_Game")),
			TouchesPerGame: numPtr(r.Get("Touches_Per_Game")),
			Efficiency:     numPtr(r.Get("Efficiency")),
			BigPlayAbility: numPtr(r.Get("Big_Play_Ability")),
			TurnoverRate:   numPtr(r.Get("Turnover_Rate")),
		})
	})
	return out
}

// WriteParquet writes rows as Snappy-compressed Parquet.
func WriteParquet[T any](w io.Writer, rows []T) error {
	pw := parquet.NewWriter(w, parquet.SchemaOf(new(T)), parquet.Compression(&parquet.Snappy))
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			_ = pw.Close()
			return err
		}
	}
	return pw.Close()
}

func parquetBytes(df *frame.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, CombinedRecords(df)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func strPtr(v frame.Value) *string {
	if v.IsNull() {
		return nil
	}
	s := v.String()
	return &s
}

func numPtr(v frame.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}
