// Package pipeline runs one season end to end: collect the raw tables, clean
// them, derive features, combine the offensive groups and save everything.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/tyler180/nfl-archetypes/internal/clean"
	"github.com/tyler180/nfl-archetypes/internal/combine"
	"github.com/tyler180/nfl-archetypes/internal/features"
	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/logger"
	"github.com/tyler180/nfl-archetypes/internal/pfr"
	"github.com/tyler180/nfl-archetypes/internal/position"
	"github.com/tyler180/nfl-archetypes/internal/report"
	"github.com/tyler180/nfl-archetypes/internal/store"
)

type Result struct {
	Season   int
	Features map[position.Group]*frame.Frame
	Combined *frame.Frame
}

// Counts is the number of combined rows per offensive group.
func (r *Result) Counts() map[position.Group]int { return combine.GroupCounts(r.Combined) }

// Datasets lists the outputs in save order: feature tables, then combined.
func (r *Result) Datasets() []store.Dataset {
	var out []store.Dataset
	for _, g := range position.All {
		out = append(out, store.Features(r.Season, g, r.Features[g]))
	}
	return append(out, store.Combined(r.Season, r.Combined))
}

// Process is the pure part of a run. A group whose table has the wrong shape
// is logged and treated as empty.
func Process(season int, raw map[position.Group]*frame.Frame, th features.Thresholds, log logrus.FieldLogger) *Result {
	if log == nil {
		log = logrus.StandardLogger()
	}
	res := &Result{Season: season, Features: make(map[position.Group]*frame.Frame, len(position.All))}

	for _, ex := range features.Extractors(th) {
		l := log.WithField("group", ex.Group)
		res.Features[ex.Group] = frame.Empty()

		cleaned, err := clean.Normalize(raw[ex.Group], ex.Group)
		if err != nil {
			l.WithError(err).Warn("clean failed, group skipped")
			continue
		}
		df, err := ex.Extract(cleaned)
		if err != nil {
			l.WithError(err).Warn("feature extraction failed, group skipped")
			continue
		}
		l.WithFields(logrus.Fields{"raw": cleaned.Len(), "rows": df.Len()}).Info("features ready")
		res.Features[ex.Group] = df
	}

	res.Combined = combine.Normalizer{Log: log}.Combine(
		res.Features[position.QB],
		res.Features[position.RB],
		res.Features[position.WRTE],
	)
	return res
}

// Catalog registers a saved season somewhere queryable.
type Catalog interface {
	Register(ctx context.Context, season int) error
}

type Runner struct {
	Source     pfr.Source
	Sinks      []store.Sink
	Catalog    Catalog
	Thresholds features.Thresholds
	Log        logrus.FieldLogger
	// Report receives leaderboards and the summary when set.
	Report io.Writer
}

// Run processes season and saves every dataset to every sink. Fetch problems
// only shrink the output; sink and catalog errors are returned.
func (r *Runner) Run(ctx context.Context, season int) (*Result, error) {
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = logger.WithRun(log, season)

	raw := r.Source.Collect(ctx, season)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := Process(season, raw, r.Thresholds, log)

	if r.Report != nil {
		if err := report.Leaderboards(r.Report, report.DefaultBoards(res.Features)...); err != nil {
			log.WithError(err).Warn("leaderboards failed")
		}
		if err := report.Summary(r.Report, res.Features, res.Combined); err != nil {
			log.WithError(err).Warn("summary failed")
		}
	}

	for _, ds := range res.Datasets() {
		if err := r.save(ctx, ds); err != nil {
			return res, err
		}
	}

	if r.Catalog != nil && !res.Combined.IsEmpty() {
		if err := r.Catalog.Register(ctx, season); err != nil {
			return res, fmt.Errorf("register %d: %w", season, err)
		}
	}

	log.WithField("counts", res.Counts()).Info("run complete")
	return res, nil
}

func (r *Runner) save(ctx context.Context, ds store.Dataset) error {
	var errs []error
	for _, s := range r.Sinks {
		if err := s.Save(ctx, ds); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("save %s: %w", ds.Name(), err)
	}
	return nil
}
