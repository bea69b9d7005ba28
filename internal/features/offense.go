package features

import (
	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

var (
	backfieldIdentity = []string{"Player_Clean", "Player_ID", "Team", "Age", "G", "GS"}
	rosterIdentity    = []string{"Player_Clean", "Player_ID", "Team", "Position", "Age", "G", "GS"}
)

// QB qualifies passers with at least minAtt attempts.
func QB(minAtt float64) Extractor {
	return Extractor{
		Group:        position.QB,
		ThresholdCol: "Att",
		Min:          minAtt,
		Identity:     backfieldIdentity,
		Features: []Feature{
			{"Completion_Pct", col("Cmp%")},
			{"Yards_Per_Attempt", col("Y/A")},
			{"Adj_Yards_Per_Attempt", col("AY/A")},
			{"Passer_Rating", col("Rate")},
			{"Pass_Attempts_Per_Game", perGame("Att")},
			{"Pass_Yards_Per_Game", col("Y/G")},
			{"TD_Rate", per("TD", "Att")},
			{"INT_Rate", per("Int", "Att")},
			{"TD_INT_Ratio", func(r frame.Record) frame.Value {
				return ratio(r.Get("TD"), r.Get("Int"))
			}},
			{"Sack_Rate", func(r frame.Record) frame.Value {
				sk := r.Get("Sk")
				if sk.IsNull() || r.Get("Att").IsNull() {
					return frame.Null()
				}
				return div(sk, sum(r.Get("Att"), sk))
			}},
			{"Yards_Per_Completion", col("Y/C")},
			{"Deep_Ball_Ability", per("Lng", "Att")},
			{"Consistency", func(r frame.Record) frame.Value {
				ir := r.Get("INT_Rate")
				if ir.IsNull() {
					return ir
				}
				return div(frame.Num(1), sum(ir, frame.Num(0.001)))
			}},
		},
	}
}

// RB qualifies rushers with at least minAtt carries.
func RB(minAtt float64) Extractor {
	return Extractor{
		Group:        position.RB,
		ThresholdCol: "Att",
		Min:          minAtt,
		Identity:     backfieldIdentity,
		Features: []Feature{
			{"Yards_Per_Carry", col("Y/A")},
			{"Yards_Per_Game", col("Y/G")},
			{"Rush_TD_Rate", per("TD", "Att")},
			{"Carries_Per_Game", perGame("Att")},
			{"Total_Rushing_Yards", col("Yds")},
			{"Long_Run_Ability", per("Lng", "Att")},
			// longest run over total yards rewards low-volume backs; kept as defined
			{"Explosive_Runs", per("Lng", "Yds")},
			{"Games_Started_Pct", per("GS", "G")},
			{"Fumble_Rate", per("Fmb", "Att")},
		},
	}
}

// WRTE qualifies pass catchers with at least minTgt targets.
func WRTE(minTgt float64) Extractor {
	return Extractor{
		Group:        position.WRTE,
		ThresholdCol: "Tgt",
		Min:          minTgt,
		Identity:     rosterIdentity,
		Features: []Feature{
			{"Catch_Rate", col("Rec%")},
			{"Targets_Per_Game", perGame("Tgt")},
			{"Receptions_Per_Game", col("R/G")},
			{"Yards_Per_Reception", col("Y/R")},
			{"Yards_Per_Target", col("Y/Tgt")},
			{"Yards_Per_Game", col("Y/G")},
			{"TD_Rate", per("TD", "Rec")},
			{"Long_Reception_Ability", per("Lng", "Rec")},
			{"Explosive_Receptions", per("Lng", "Yds")},
			{"Target_Share_Proxy", col("Targets_Per_Game")},
			{"Red_Zone_Threat", func(r frame.Record) frame.Value {
				return scale(div(r.Get("TD"), r.Get("Yds")), 1000)
			}},
			{"Fumble_Rate", per("Fmb", "Rec")},
		},
	}
}
