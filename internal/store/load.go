package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

type DynamoDBReadAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// LoadFeatureRows reads back the table DynamoSink wrote for season and
// group, in its original row and column order.
func LoadFeatureRows(ctx context.Context, ddb DynamoDBReadAPI, table string, season int, g position.Group) (*frame.Frame, error) {
	pk := SeasonGroup(Dataset{Season: season, Group: g})

	type item struct {
		row   int
		attrs map[string]types.AttributeValue
	}
	var items []item
	var cols []string

	var lastKey map[string]types.AttributeValue
	for {
		out, err := ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(table),
			KeyConditionExpression:    aws.String("#pk = :v"),
			ExpressionAttributeNames:  map[string]string{"#pk": attrPK},
			ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: pk}},
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", pk, err)
		}
		for _, it := range out.Items {
			if cols == nil {
				cols = getList(it, attrCols)
			}
			items = append(items, item{row: getNum(it, attrRow), attrs: it})
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = out.LastEvaluatedKey
	}
	if len(items) == 0 {
		return frame.Empty(), nil
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].row < items[j].row })
	rows := make([][]frame.Value, len(items))
	for i, it := range items {
		row := make([]frame.Value, len(cols))
		for j, c := range cols {
			row[j] = getValue(it.attrs, c)
		}
		rows[i] = row
	}
	return frame.New(cols, rows), nil
}

// ---------- helpers (local to store) ----------

func getValue(m map[string]types.AttributeValue, key string) frame.Value {
	switch t := m[key].(type) {
	case *types.AttributeValueMemberS:
		return frame.Str(t.Value)
	case *types.AttributeValueMemberN:
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return frame.Null()
		}
		return frame.Num(f)
	}
	return frame.Null()
}

func getNum(m map[string]types.AttributeValue, key string) int {
	if v, ok := m[key]; ok {
		switch t := v.(type) {
		case *types.AttributeValueMemberN:
			n, _ := strconv.Atoi(t.Value)
			return n
		case *types.AttributeValueMemberS:
			n, _ := strconv.Atoi(t.Value)
			return n
		}
	}
	return 0
}

func getList(m map[string]types.AttributeValue, key string) []string {
	l, ok := m[key].(*types.AttributeValueMemberL)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(l.Value))
	for _, v := range l.Value {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			out = append(out, s.Value)
		}
	}
	return out
}
