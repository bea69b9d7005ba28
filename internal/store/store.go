// Package store persists the pipeline's output tables: local CSV, S3 (CSV and
// Parquet) and DynamoDB.
package store

import (
	"context"
	"fmt"

	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

// CombinedGroup tags the cross-position dataset where a group is expected.
const CombinedGroup position.Group = "COMBINED"

// Dataset is one named output table.
type Dataset struct {
	Season int
	Group  position.Group
	Frame  *frame.Frame
}

// Sink saves a dataset somewhere. Empty datasets are skipped by every sink.
type Sink interface {
	Save(ctx context.Context, ds Dataset) error
}

func Features(season int, g position.Group, df *frame.Frame) Dataset {
	return Dataset{Season: season, Group: g, Frame: df}
}

func Combined(season int, df *frame.Frame) Dataset {
	return Dataset{Season: season, Group: CombinedGroup, Frame: df}
}

func (d Dataset) IsCombined() bool { return d.Group == CombinedGroup }

// Name is the file stem, e.g. nfl_qb_features_2024 or
// nfl_offensive_combined_2024.
func (d Dataset) Name() string {
	if d.IsCombined() {
		return fmt.Sprintf("nfl_offensive_combined_%d", d.Season)
	}
	return fmt.Sprintf("nfl_%s_features_%d", d.Group.Short(), d.Season)
}
