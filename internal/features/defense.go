package features

import (
	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

// Defense qualifies defenders with at least minComb combined tackles.
// PFR leaves zero cells blank on the defense page, so additive totals treat
// null as 0.
func Defense(minComb float64) Extractor {
	return Extractor{
		Group:        position.Defense,
		ThresholdCol: "Comb",
		Min:          minComb,
		Identity:     rosterIdentity,
		Features: []Feature{
			{"Tackles_Per_Game", perGame("Comb")},
			{"Solo_Tackle_Pct", per("Solo", "Comb")},
			{"Sacks_Per_Game", perGame("Sk")},
			{"Interceptions_Per_Game", perGame("Int")},
			{"Passes_Defended_Per_Game", perGame("PD")},
			{"Forced_Fumbles_Per_Game", perGame("FF")},
			{"Takeaways_Per_Game", func(r frame.Record) frame.Value {
				return div(sum(r.Get("Int"), r.Get("FR")), r.Get("G"))
			}},
			// Yds/Lng here are interception return yards
			{"Return_Explosiveness", per("Lng", "Yds")},
			{"Defensive_TDs", func(r frame.Record) frame.Value {
				return sum(r.Get("TD"), r.Get("TD.1"))
			}},
		},
	}
}
