package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/tyler180/nfl-archetypes/internal/frame"
)

type DynamoDBAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Item layout: PK=SeasonGroup "2024#QB", SK=PlayerKey. Every non-null cell
// becomes an attribute of the same name; Cols keeps the column order and
// Row the position in the table.
const (
	attrPK   = "SeasonGroup"
	attrSK   = "PlayerKey"
	attrCols = "Cols"
	attrRow  = "Row"
)

// DynamoSink writes feature rows to one table, 25 per batch.
type DynamoSink struct {
	Client DynamoDBAPI
	Table  string
	Log    logrus.FieldLogger
}

func SeasonGroup(ds Dataset) string { return fmt.Sprintf("%d#%s", ds.Season, ds.Group) }

func (s DynamoSink) Save(ctx context.Context, ds Dataset) error {
	if ds.Frame.IsEmpty() {
		return nil
	}
	const maxBatch = 25
	now := strconv.FormatInt(time.Now().Unix(), 10)
	pk := SeasonGroup(ds)

	cols := ds.Frame.Columns()
	colList := make([]types.AttributeValue, len(cols))
	for i, c := range cols {
		colList[i] = &types.AttributeValueMemberS{Value: c}
	}

	seen := make(map[string]bool, ds.Frame.Len())
	var reqs []types.WriteRequest
	var err error
	ds.Frame.Each(func(r frame.Record) {
		sk := PlayerKey(r)
		if sk == "" || seen[sk] {
			if s.Log != nil {
				s.Log.WithFields(logrus.Fields{"key": pk, "player": sk, "row": r.Index()}).Warn("skipping row without unique key")
			}
			return
		}
		seen[sk] = true

		item := map[string]types.AttributeValue{
			attrPK:      &types.AttributeValueMemberS{Value: pk},
			attrSK:      &types.AttributeValueMemberS{Value: sk},
			attrCols:    &types.AttributeValueMemberL{Value: colList},
			attrRow:     &types.AttributeValueMemberN{Value: strconv.Itoa(r.Index())},
			"Season":    &types.AttributeValueMemberN{Value: strconv.Itoa(ds.Season)},
			"UpdatedAt": &types.AttributeValueMemberN{Value: now},
		}
		for _, c := range cols {
			v := r.Get(c)
			switch v.Kind() {
			case frame.KindNumber:
				item[c] = &types.AttributeValueMemberN{Value: v.String()}
			case frame.KindString:
				item[c] = &types.AttributeValueMemberS{Value: v.Text()}
			}
		}
		reqs = append(reqs, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	})

	for i := 0; i < len(reqs); i += maxBatch {
		end := i + maxBatch
		if end > len(reqs) {
			end = len(reqs)
		}
		if err = batchWriteWithRetry(ctx, s.Client, s.Table, reqs[i:end]); err != nil {
			return fmt.Errorf("batch write %s: %w", pk, err)
		}
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"table": s.Table, "key": pk, "rows": len(reqs)}).Info("saved items")
	}
	return nil
}

// PlayerKey identifies a row within its SeasonGroup: the PFR id when known,
// else the cleaned name, then team and group when present.
func PlayerKey(r frame.Record) string {
	id := r.Text("Player_ID")
	if id == "" {
		id = r.Text("Player_Clean")
	}
	if id == "" {
		return ""
	}
	parts := []string{id}
	for _, c := range []string{"Team", "Position_Group"} {
		if t := r.Text(c); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "#")
}

func batchWriteWithRetry(ctx context.Context, ddb DynamoDBAPI, table string, reqs []types.WriteRequest) error {
	input := &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{table: reqs},
	}
	const maxAttempts = 6
	backoff := 120 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := ddb.BatchWriteItem(ctx, input)
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems) == 0 {
			return nil
		}
		input.RequestItems = out.UnprocessedItems
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff += 120 * time.Millisecond
		}
	}
	return fmt.Errorf("unprocessed items remained after retries for table %s", table)
}
