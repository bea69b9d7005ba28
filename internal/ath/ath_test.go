package ath

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAthena succeeds every query on the second poll unless its SQL
// contains failOn. Results are chosen by query prefix.
type fakeAthena struct {
	sql    map[string]string
	polls  map[string]int
	failOn string
	n      int
}

func newFake() *fakeAthena {
	return &fakeAthena{sql: map[string]string{}, polls: map[string]int{}}
}

func (f *fakeAthena) StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.n++
	qid := fmt.Sprintf("q%d", f.n)
	f.sql[qid] = aws.ToString(in.QueryString)
	return &athena.StartQueryExecutionOutput{QueryExecutionId: aws.String(qid)}, nil
}

func (f *fakeAthena) GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	qid := aws.ToString(in.QueryExecutionId)
	f.polls[qid]++
	state := types.QueryExecutionStateRunning
	var reason *string
	if f.polls[qid] >= 2 {
		state = types.QueryExecutionStateSucceeded
		if f.failOn != "" && strings.Contains(f.sql[qid], f.failOn) {
			state = types.QueryExecutionStateFailed
			reason = aws.String("SYNTAX_ERROR")
		}
	}
	return &athena.GetQueryExecutionOutput{QueryExecution: &types.QueryExecution{
		QueryExecutionId: aws.String(qid),
		Status:           &types.QueryExecutionStatus{State: state, StateChangeReason: reason},
		Statistics:       &types.QueryExecutionStatistics{DataScannedInBytes: aws.Int64(2048)},
	}}, nil
}

func (f *fakeAthena) GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	sql := strings.TrimSpace(f.sql[aws.ToString(in.QueryExecutionId)])
	row := func(vals ...string) types.Row {
		var d []types.Datum
		for _, v := range vals {
			d = append(d, types.Datum{VarCharValue: aws.String(v)})
		}
		return types.Row{Data: d}
	}
	rs := &types.ResultSet{}
	switch {
	case strings.HasPrefix(sql, "SELECT COUNT(*)"):
		rs.Rows = []types.Row{row("c"), row("123")}
	case strings.HasPrefix(sql, "SELECT position_group"):
		rs.Rows = []types.Row{row("position_group", "players"), row("QB", "30"), row("RB", "45")}
	}
	return &athena.GetQueryResultsOutput{ResultSet: rs}, nil
}

func runner(f *fakeAthena) *Runner {
	log, _ := test.NewNullLogger()
	return &Runner{Client: f, Database: "nfl", Workgroup: "primary", Log: log, Poll: time.Millisecond}
}

func TestRegister(t *testing.T) {
	f := newFake()
	n, err := runner(f).Register(context.Background(), 2024, "s3://bkt/archetypes/combined/season=2024")
	require.NoError(t, err)
	assert.Equal(t, int64(123), n)

	require.Equal(t, 4, f.n)
	assert.Equal(t, "DROP TABLE IF EXISTS nfl.nfl_offensive_combined_2024", f.sql["q1"])
	assert.Contains(t, f.sql["q2"], "CREATE EXTERNAL TABLE nfl.nfl_offensive_combined_2024")
	assert.Contains(t, f.sql["q2"], "LOCATION 's3://bkt/archetypes/combined/season=2024/'")
}

func TestRegister_CreateFails(t *testing.T) {
	f := newFake()
	f.failOn = "CREATE EXTERNAL"
	_, err := runner(f).Register(context.Background(), 2024, "s3://bkt/x/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNTAX_ERROR")
}

func TestRegister_DropFailureIsTolerated(t *testing.T) {
	f := newFake()
	f.failOn = "DROP TABLE"
	n, err := runner(f).Register(context.Background(), 2024, "s3://bkt/x/")
	require.NoError(t, err)
	assert.Equal(t, int64(123), n)
}

func TestExecAndWait_ContextCancelled(t *testing.T) {
	f := newFake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := runner(f)
	r.Poll = time.Hour
	_, err := r.ExecAndWait(ctx, "SELECT 1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRows(t *testing.T) {
	rows, err := runner(newFake()).Rows(context.Background(), BuildPerGroupCounts("nfl", 2024))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"QB", "30"}, {"RB", "45"}}, rows)
}
