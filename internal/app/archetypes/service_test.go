package archetypes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcfg "github.com/tyler180/nfl-archetypes/internal/config"
	"github.com/tyler180/nfl-archetypes/internal/pfr"
	"github.com/tyler180/nfl-archetypes/internal/pipeline"
	"github.com/tyler180/nfl-archetypes/internal/position"
	"github.com/tyler180/nfl-archetypes/internal/store"
)

const rushingPage = `<html><body>
<table id="rushing">
  <thead><tr>
    <th>Rk</th><th>Player</th><th>Tm</th><th>Age</th><th>Pos</th><th>G</th><th>GS</th>
    <th>Att</th><th>Yds</th><th>TD</th><th>Lng</th><th>Y/A</th><th>Y/G</th><th>Fmb</th>
  </tr></thead>
  <tbody>
    <tr><th>1</th><td data-append-csv="McCaCh01">Christian McCaffrey*+</td><td>SFO</td><td>27</td><td>RB</td>
      <td>16</td><td>16</td><td>272</td><td>1,459</td><td>14</td><td>72</td><td>5.4</td><td>91.2</td><td>2</td></tr>
    <tr><th>2</th><td>Spare Back</td><td>SFO</td><td>25</td><td>RB</td>
      <td>9</td><td>0</td><td>12</td><td>40</td><td>0</td><td>9</td><td>3.3</td><td>4.4</td><td>0</td></tr>
  </tbody>
</table>
</body></html>`

func offlineConfig(t *testing.T) *appcfg.Config {
	t.Helper()
	htmlDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(htmlDir, "rushing.htm"), []byte(rushingPage), 0o644))

	cfg := appcfg.Default()
	cfg.HTMLDir = htmlDir
	cfg.OutDir = t.TempDir()
	return cfg
}

func TestHandle_OfflineRun(t *testing.T) {
	cfg := offlineConfig(t)
	log, _ := test.NewNullLogger()

	resp, err := Handle(context.Background(), Event{Season: 2022}, cfg, nil, log)
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Equal(t, 2022, resp.Season)
	assert.Equal(t, 1, resp.Features["RB"])
	assert.Equal(t, 0, resp.Features["QB"])
	assert.Equal(t, map[string]int{"RB": 1}, resp.Combined)
	assert.Empty(t, resp.Parquet)

	_, err = os.Stat(filepath.Join(cfg.OutDir, "nfl_rb_features_2022.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutDir, "nfl_offensive_combined_2022.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutDir, "nfl_qb_features_2022.csv"))
	assert.True(t, os.IsNotExist(err))

	// read the season back the way the report command does
	res, err := Load(context.Background(), cfg, nil, 2022)
	require.NoError(t, err)
	rb := res.Features[position.RB]
	require.Equal(t, 1, rb.Len())
	assert.Equal(t, "Christian McCaffrey", rb.Record(0).Text("Player_Clean"))
	assert.True(t, res.Features[position.QB].IsEmpty())
	assert.Equal(t, 1, res.Combined.Len())
}

func TestHandle_InvalidSeason(t *testing.T) {
	cfg := offlineConfig(t)
	_, err := Handle(context.Background(), Event{Season: 1850}, cfg, nil, nil)
	assert.ErrorIs(t, err, appcfg.ErrInvalidSeason)
}

func TestNewRunner_Wiring(t *testing.T) {
	cfg := appcfg.Default()
	cfg.AWS.S3Bucket = "stats-bucket"
	cfg.AWS.TableName = "nfl_features"
	cfg.AWS.AthenaDB = "nfl"

	clients := &Clients{S3: &s3.Client{}, DynamoDB: &dynamodb.Client{}, Athena: &athena.Client{}}
	r := NewRunner(cfg, clients, nil, nil)

	require.Len(t, r.Sinks, 3)
	assert.IsType(t, store.CSVSink{}, r.Sinks[0])
	assert.IsType(t, store.S3Sink{}, r.Sinks[1])
	assert.IsType(t, store.DynamoSink{}, r.Sinks[2])
	assert.IsType(t, &pfr.Client{}, r.Source)

	cat, ok := r.Catalog.(pipeline.AthenaCatalog)
	require.True(t, ok)
	assert.Equal(t, "s3://stats-bucket/nfl_archetypes/combined/season=2023/", cat.Location(2023))
	assert.Equal(t, "nfl", cat.Athena.Database)
}

func TestNewRunner_NoClientsNoCloudSinks(t *testing.T) {
	cfg := appcfg.Default()
	cfg.OutDir = ""
	cfg.HTMLDir = t.TempDir()
	cfg.AWS.S3Bucket = "stats-bucket"

	r := NewRunner(cfg, nil, nil, nil)
	assert.Empty(t, r.Sinks)
	assert.Nil(t, r.Catalog)
	assert.IsType(t, pfr.DirSource{}, r.Source)
}

func TestNeedsAWS(t *testing.T) {
	cfg := appcfg.Default()
	assert.False(t, NeedsAWS(cfg))
	cfg.AWS.TableName = "t"
	assert.True(t, NeedsAWS(cfg))
}
