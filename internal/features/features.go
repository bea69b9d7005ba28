// Package features derives per-position rate and volume metrics from a
// Cleaned Stat Table. Each position group is described by an Extractor: a
// usage threshold, the identity columns to carry and an ordered list of
// feature formulas.
package features

import (
	"fmt"

	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

// Feature is one derived column. Compute sees the raw stats plus every
// feature declared before it.
type Feature struct {
	Name    string
	Compute func(frame.Record) frame.Value
}

type Extractor struct {
	Group position.Group

	// Rows whose ThresholdCol is null or below Min are dropped.
	ThresholdCol string
	Min          float64

	Identity []string
	Features []Feature
}

// Thresholds are the minimum-sample usage rules per group.
type Thresholds struct {
	QBMinAtt   float64 `yaml:"qb_min_att"`
	RBMinAtt   float64 `yaml:"rb_min_att"`
	WRMinTgt   float64 `yaml:"wr_min_tgt"`
	DefMinComb float64 `yaml:"def_min_comb"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{QBMinAtt: 100, RBMinAtt: 50, WRMinTgt: 30, DefMinComb: 20}
}

// Extractors returns the extractor for every group in position.All order.
func Extractors(th Thresholds) []Extractor {
	return []Extractor{QB(th.QBMinAtt), RB(th.RBMinAtt), WRTE(th.WRMinTgt), Defense(th.DefMinComb)}
}

// Columns lists the feature names in declared order.
func (e Extractor) Columns() []string {
	out := make([]string, len(e.Features))
	for i, f := range e.Features {
		out[i] = f.Name
	}
	return out
}

// Extract filters qualifying players and computes the feature columns.
// The result holds the identity columns present in the input followed by
// every feature column; feature nulls are filled with 0.
func (e Extractor) Extract(in *frame.Frame) (*frame.Frame, error) {
	if in.IsEmpty() {
		return frame.Empty(), nil
	}
	if !in.Has(e.ThresholdCol) {
		return nil, fmt.Errorf("%s features: %w %q", e.Group, frame.ErrMissingColumn, e.ThresholdCol)
	}

	df := in.Filter(func(r frame.Record) bool {
		v, ok := r.Num(e.ThresholdCol)
		return ok && v >= e.Min
	})

	for _, f := range e.Features {
		df = df.WithColumn(f.Name, f.Compute)
	}

	var cols []string
	for _, c := range e.Identity {
		if in.Has(c) {
			cols = append(cols, c)
		}
	}
	cols = append(cols, e.Columns()...)

	out, err := df.Select(cols...)
	if err != nil {
		return nil, fmt.Errorf("%s features: %w", e.Group, err)
	}
	return out.FillNull(frame.Num(0), e.Columns()...), nil
}

// div is a/b, null when either side is null or b is zero.
func div(a, b frame.Value) frame.Value {
	x, ok1 := a.Float()
	y, ok2 := b.Float()
	if !ok1 || !ok2 || y == 0 {
		return frame.Null()
	}
	return frame.Num(x / y)
}

// ratio is a/b but falls back to a when the quotient is undefined.
func ratio(a, b frame.Value) frame.Value {
	if q := div(a, b); !q.IsNull() {
		return q
	}
	return a
}

func scale(v frame.Value, k float64) frame.Value {
	x, ok := v.Float()
	if !ok {
		return frame.Null()
	}
	return frame.Num(x * k)
}

// sum adds the numeric operands; nulls count as zero.
func sum(vs ...frame.Value) frame.Value {
	var t float64
	for _, v := range vs {
		if x, ok := v.Float(); ok {
			t += x
		}
	}
	return frame.Num(t)
}

// Formula builders. Column names are PFR headers or earlier feature names.

func col(c string) func(frame.Record) frame.Value {
	return func(r frame.Record) frame.Value { return r.Get(c) }
}

func per(num, den string) func(frame.Record) frame.Value {
	return func(r frame.Record) frame.Value { return div(r.Get(num), r.Get(den)) }
}

func perGame(c string) func(frame.Record) frame.Value { return per(c, "G") }
