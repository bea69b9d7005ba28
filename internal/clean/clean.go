// Package clean turns a raw PFR season table into a Cleaned Stat Table:
// header-repeat rows dropped, stat columns coerced to numbers, award marks
// stripped from player names and every row tagged with its position group.
package clean

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

const (
	PlayerCol        = "Player"
	PlayerCleanCol   = "Player_Clean"
	PositionGroupCol = "Position_Group"
)

// ErrMissingIdentity is returned when a non-empty table has no Player column.
var ErrMissingIdentity = errors.New("clean: identity column absent")

// NumericColumns lists, per group, the stat columns coerced to numbers.
// Yds.1 / TD.1 are the second occurrence of a header on the PFR page.
var NumericColumns = map[position.Group][]string{
	position.QB: {
		"Age", "G", "GS", "Cmp", "Att", "Cmp%", "Yds", "TD", "Int",
		"Rate", "QBR", "Sk", "Yds.1", "Y/A", "AY/A", "Y/C", "Y/G",
		"QBrec", "Lng",
	},
	position.RB: {"Age", "G", "GS", "Att", "Yds", "TD", "Lng", "Y/A", "Y/G", "Fmb"},
	position.WRTE: {
		"Age", "G", "GS", "Tgt", "Rec", "Yds", "Y/R", "TD",
		"Lng", "R/G", "Y/G", "Fmb", "Y/Tgt", "Rec%",
	},
	position.Defense: {
		"Age", "G", "GS", "Int", "Yds", "TD", "Lng", "PD", "FF",
		"Fmb", "FR", "Yds.1", "TD.1", "Sk", "Comb", "Solo", "Ast",
		"TFL", "QBHits", "Sfty",
	},
}

var awardMarks = strings.NewReplacer("*", "", "+", "")

// Normalize cleans raw for group g. An empty table comes back empty.
func Normalize(raw *frame.Frame, g position.Group) (*frame.Frame, error) {
	if raw.IsEmpty() {
		return frame.Empty(), nil
	}
	if !raw.Has(PlayerCol) {
		return nil, fmt.Errorf("%w: %s table: %w", ErrMissingIdentity, g, frame.ErrMissingColumn)
	}

	df := raw.DropEqual(PlayerCol, PlayerCol)

	for _, col := range NumericColumns[g] {
		df = df.MapColumn(col, Coerce)
	}

	df = df.WithColumn(PlayerCleanCol, func(r frame.Record) frame.Value {
		v := r.Get(PlayerCol)
		if v.IsNull() {
			return v
		}
		return frame.Str(PlayerName(v.String()))
	})
	df = df.WithColumn(PositionGroupCol, func(frame.Record) frame.Value {
		return frame.Str(string(g))
	})
	return df, nil
}

// PlayerName removes every award mark (* Pro Bowl, + All-Pro) and nothing else.
func PlayerName(s string) string { return awardMarks.Replace(s) }

var numReplacer = strings.NewReplacer(",", "", "\u00a0", "", "\u2009", "")

// Coerce converts a cell to a number. Numbers pass through; strings are
// parsed after trimming, dropping thousands separators and a trailing %;
// anything else becomes null.
func Coerce(v frame.Value) frame.Value {
	switch v.Kind() {
	case frame.KindNumber:
		return v
	case frame.KindString:
		s := numReplacer.Replace(strings.TrimSpace(v.Text()))
		s = strings.TrimSuffix(s, "%")
		if s == "" {
			return frame.Null()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return frame.Null()
		}
		return frame.Num(f)
	}
	return frame.Null()
}
