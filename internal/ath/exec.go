// Package ath registers the exported combined dataset in Athena and checks
// its row count.
package ath

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/sirupsen/logrus"
)

type AthenaAPI interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type Runner struct {
	Client    AthenaAPI
	Workgroup string
	Database  string
	OutputS3  string // s3://bucket/prefix/, optional when the workgroup sets one
	Log       logrus.FieldLogger
	// Poll defaults to one second.
	Poll time.Duration
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

func (r *Runner) ExecAndWait(ctx context.Context, sql string) (*types.QueryExecution, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString:           aws.String(sql),
		QueryExecutionContext: &types.QueryExecutionContext{Database: aws.String(r.Database)},
	}
	if r.Workgroup != "" {
		in.WorkGroup = aws.String(r.Workgroup)
	}
	if r.OutputS3 != "" {
		in.ResultConfiguration = &types.ResultConfiguration{OutputLocation: aws.String(r.OutputS3)}
	}
	startOut, err := r.Client.StartQueryExecution(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("start query: %w", err)
	}
	qid := aws.ToString(startOut.QueryExecutionId)
	log := r.logger().WithField("qid", qid)
	log.Debug("athena query started")

	poll := r.Poll
	if poll <= 0 {
		poll = time.Second
	}
	tick := time.NewTicker(poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick.C:
			ge, err := r.Client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
				QueryExecutionId: aws.String(qid),
			})
			if err != nil {
				return nil, fmt.Errorf("get query execution: %w", err)
			}
			qe := ge.QueryExecution
			switch qe.Status.State {
			case types.QueryExecutionStateSucceeded:
				var scannedMB, execSec float64
				if stats := qe.Statistics; stats != nil {
					scannedMB = float64(aws.ToInt64(stats.DataScannedInBytes)) / 1024.0 / 1024.0
					execSec = float64(aws.ToInt64(stats.EngineExecutionTimeInMillis)) / 1000.0
				}
				log.WithFields(logrus.Fields{"scanned_mb": scannedMB, "exec_s": execSec}).Info("athena query succeeded")
				return qe, nil
			case types.QueryExecutionStateFailed:
				msg := "unknown error"
				if qe.Status.AthenaError != nil && qe.Status.AthenaError.ErrorMessage != nil {
					msg = aws.ToString(qe.Status.AthenaError.ErrorMessage)
				} else if qe.Status.StateChangeReason != nil {
					msg = aws.ToString(qe.Status.StateChangeReason)
				}
				return nil, errors.New("athena failed: " + msg)
			case types.QueryExecutionStateCancelled:
				return nil, errors.New("athena cancelled")
			}
		}
	}
}

// Rows runs sql and returns the result rows without the header row.
func (r *Runner) Rows(ctx context.Context, sql string) ([][]string, error) {
	exec, err := r.ExecAndWait(ctx, sql)
	if err != nil {
		return nil, err
	}
	gr, err := r.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: exec.QueryExecutionId,
	})
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}
	var out [][]string
	for i, row := range gr.ResultSet.Rows {
		if i == 0 {
			continue
		}
		rec := make([]string, len(row.Data))
		for j, d := range row.Data {
			rec[j] = aws.ToString(d.VarCharValue)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *Runner) CountRows(ctx context.Context, sql string) (int64, error) {
	rows, err := r.Rows(ctx, sql)
	if err != nil {
		return 0, err
	}
	if len(rows) < 1 || len(rows[0]) < 1 {
		return 0, errors.New("unexpected COUNT(*) result shape")
	}
	var n int64
	if _, err := fmt.Sscan(rows[0][0], &n); err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return n, nil
}

// Register recreates the season's external table over location and returns
// its row count. The drop and the per-group breakdown are best effort.
func (r *Runner) Register(ctx context.Context, season int, location string) (int64, error) {
	log := r.logger().WithFields(logrus.Fields{"season": season, "table": r.Database + "." + TableName(season)})

	if _, err := r.ExecAndWait(ctx, BuildDrop(r.Database, season)); err != nil {
		log.WithError(err).Warn("drop table failed")
	}
	if _, err := r.ExecAndWait(ctx, BuildCreateExternal(r.Database, season, location)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}
	n, err := r.CountRows(ctx, BuildCount(r.Database, season))
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	log.WithField("rows", n).Info("athena table ready")

	if rows, err := r.Rows(ctx, BuildPerGroupCounts(r.Database, season)); err == nil {
		for _, rec := range rows {
			if len(rec) == 2 {
				log.WithFields(logrus.Fields{"group": rec[0], "players": rec[1]}).Info("athena group count")
			}
		}
	}
	return n, nil
}
