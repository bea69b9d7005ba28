// Package combine remaps the offensive feature tables onto one shared schema
// so players from different position groups can be compared side by side.
package combine

import (
	"github.com/sirupsen/logrus"

	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

// Shared dimensions of the combined dataset.
const (
	YardsPerGame   = "Yards_Per_Game"
	TouchesPerGame = "Touches_Per_Game"
	Efficiency     = "Efficiency"
	BigPlayAbility = "Big_Play_Ability"
	TurnoverRate   = "Turnover_Rate"
)

var Dimensions = []string{YardsPerGame, TouchesPerGame, Efficiency, BigPlayAbility, TurnoverRate}

// Candidates is the widest possible combined schema, in output order.
var Candidates = append([]string{"Player_Clean", "Team", "Age", "G", "Position_Group"}, Dimensions...)

// Source maps one dimension to a feature column, divided by Scale to bring
// the group onto a comparable range.
type Source struct {
	Column string
	Scale  float64
}

// Efficiency scales: a perfect passer rating is 158.3, 10 yards per carry is
// treated as the ceiling, catch rate is a percentage.
const (
	PasserRatingMax  = 158.3
	YardsPerCarryMax = 10
	CatchRateMax     = 100
)

var Mapping = map[position.Group]map[string]Source{
	position.QB: {
		YardsPerGame:   {"Pass_Yards_Per_Game", 1},
		TouchesPerGame: {"Pass_Attempts_Per_Game", 1},
		Efficiency:     {"Passer_Rating", PasserRatingMax},
		BigPlayAbility: {"Deep_Ball_Ability", 1},
		TurnoverRate:   {"INT_Rate", 1},
	},
	position.RB: {
		YardsPerGame:   {"Yards_Per_Game", 1},
		TouchesPerGame: {"Carries_Per_Game", 1},
		Efficiency:     {"Yards_Per_Carry", YardsPerCarryMax},
		BigPlayAbility: {"Long_Run_Ability", 1},
		TurnoverRate:   {"Fumble_Rate", 1},
	},
	position.WRTE: {
		YardsPerGame:   {"Yards_Per_Game", 1},
		TouchesPerGame: {"Targets_Per_Game", 1},
		Efficiency:     {"Catch_Rate", CatchRateMax},
		BigPlayAbility: {"Long_Reception_Ability", 1},
		TurnoverRate:   {"Fumble_Rate", 1},
	},
}

type Normalizer struct {
	Log logrus.FieldLogger
}

// Combine maps each non-empty table, keeps the candidate columns present in
// all of them and stacks QB, RB, WR/TE rows in that order. Nulls become 0.
func (n Normalizer) Combine(qb, rb, wr *frame.Frame) *frame.Frame {
	log := n.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	inputs := []struct {
		g  position.Group
		df *frame.Frame
	}{{position.QB, qb}, {position.RB, rb}, {position.WRTE, wr}}

	var mapped []*frame.Frame
	for _, in := range inputs {
		if in.df.IsEmpty() {
			continue
		}
		m := remap(in.df, in.g)
		log.WithFields(logrus.Fields{"group": in.g, "rows": m.Len()}).Info("combined group")
		mapped = append(mapped, m)
	}
	if len(mapped) == 0 {
		return frame.Empty()
	}

	var schema []string
	for _, c := range Candidates {
		shared := true
		for _, m := range mapped {
			if !m.Has(c) {
				shared = false
				break
			}
		}
		if shared {
			schema = append(schema, c)
		}
	}
	return frame.Concat(schema, mapped...).FillNull(frame.Num(0))
}

// remap adds the shared dimensions and Position_Group to a feature table.
// A dimension whose source column is absent is left out.
func remap(df *frame.Frame, g position.Group) *frame.Frame {
	for _, dim := range Dimensions {
		src := Mapping[g][dim]
		if !df.Has(src.Column) {
			continue
		}
		df = df.WithColumn(dim, func(r frame.Record) frame.Value {
			v, ok := r.Num(src.Column)
			if !ok {
				return frame.Null()
			}
			return frame.Num(v / src.Scale)
		})
	}
	return df.WithColumn("Position_Group", func(frame.Record) frame.Value {
		return frame.Str(string(g))
	})
}

// GroupCounts counts combined rows per Position_Group.
func GroupCounts(combined *frame.Frame) map[position.Group]int {
	out := make(map[position.Group]int)
	combined.Each(func(r frame.Record) {
		out[position.Group(r.Text("Position_Group"))]++
	})
	return out
}
