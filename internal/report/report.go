// Package report prints console summaries of the feature tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gonum.org/v1/gonum/stat"

	"github.com/tyler180/nfl-archetypes/internal/combine"
	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

// Board is a top-N leaderboard over one feature table.
type Board struct {
	Title  string
	SortBy string
	Cols   []string
	N      int
	Data   *frame.Frame
}

const topN = 5

// DefaultBoards builds the per-group leaderboards. Groups without a table
// are left out.
func DefaultBoards(tables map[position.Group]*frame.Frame) []Board {
	defs := []struct {
		g      position.Group
		title  string
		sortBy string
		cols   []string
	}{
		{position.QB, "Top QBs by Passer Rating", "Passer_Rating",
			[]string{"Player_Clean", "Passer_Rating", "TD_INT_Ratio", "Yards_Per_Attempt"}},
		{position.RB, "Top RBs by Yards per Carry", "Yards_Per_Carry",
			[]string{"Player_Clean", "Yards_Per_Carry", "Yards_Per_Game", "Rush_TD_Rate"}},
		{position.WRTE, "Top WR/TEs by Yards per Game", "Yards_Per_Game",
			[]string{"Player_Clean", "Yards_Per_Game", "Catch_Rate", "Yards_Per_Reception"}},
		{position.Defense, "Top Defenders by Tackles per Game", "Tackles_Per_Game",
			[]string{"Player_Clean", "Tackles_Per_Game", "Sacks_Per_Game", "Takeaways_Per_Game"}},
	}
	var out []Board
	for _, d := range defs {
		df, ok := tables[d.g]
		if !ok {
			continue
		}
		out = append(out, Board{Title: d.title, SortBy: d.sortBy, Cols: d.cols, N: topN, Data: df})
	}
	return out
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Leaderboards renders each non-empty board. Ties keep input order.
func Leaderboards(w io.Writer, boards ...Board) error {
	for _, b := range boards {
		if b.Data.IsEmpty() {
			continue
		}
		top, err := b.Data.TopN(b.N, b.SortBy)
		if err != nil {
			return fmt.Errorf("%s: %w", b.Title, err)
		}
		top, err = top.Select(b.Cols...)
		if err != nil {
			return fmt.Errorf("%s: %w", b.Title, err)
		}

		t := newTable(w)
		t.SetTitle(b.Title)
		header := table.Row{}
		for _, c := range b.Cols {
			header = append(header, c)
		}
		t.AppendHeader(header)
		top.Each(func(r frame.Record) {
			row := table.Row{}
			for _, c := range b.Cols {
				row = append(row, cell(r.Get(c)))
			}
			t.AppendRow(row)
		})
		t.Render()
	}
	return nil
}

func cell(v frame.Value) string {
	if f, ok := v.Float(); ok {
		return fmt.Sprintf("%.3f", f)
	}
	return v.String()
}

// Summary prints per-group count, mean and standard deviation of every
// shared dimension in the combined dataset, then the closing banner.
func Summary(w io.Writer, tables map[position.Group]*frame.Frame, combined *frame.Frame) error {
	counts := combine.GroupCounts(combined)
	if combined.IsEmpty() {
		_, err := fmt.Fprintln(w, "combined dataset is empty")
		return err
	}

	t := newTable(w)
	t.SetTitle("Combined dataset")
	header := table.Row{"Group", "Players"}
	var dims []string
	for _, d := range combine.Dimensions {
		if combined.Has(d) {
			dims = append(dims, d)
			header = append(header, d)
		}
	}
	t.AppendHeader(header)

	for _, g := range position.Offense {
		if counts[g] == 0 {
			continue
		}
		sub := combined.Filter(func(r frame.Record) bool { return r.Text("Position_Group") == string(g) })
		row := table.Row{g.String(), counts[g]}
		for _, d := range dims {
			xs := numbers(sub, d)
			mean, std := stat.MeanStdDev(xs, nil)
			if len(xs) < 2 {
				std = 0
			}
			row = append(row, fmt.Sprintf("%.3f ± %.3f", mean, std))
		}
		t.AppendRow(row)
	}
	t.Render()

	return Banner(w, tables, counts)
}

var groupLabels = map[position.Group]string{
	position.QB:      "Quarterbacks",
	position.RB:      "Running Backs",
	position.WRTE:    "Pass Catchers",
	position.Defense: "Defenders",
}

var expectedArchetypes = []struct{ label, kinds string }{
	{"QB", "Elite pocket passers, mobile QBs, game managers, gunslingers"},
	{"RB", "Power backs, speed backs, receiving backs, workhorses"},
	{"WR", "Deep threats, possession receivers, slot specialists, red zone targets"},
	{"Combined", "Elite playmakers, volume players, efficiency specialists, big-play threats"},
}

// Banner prints the closing block of a run: combined rows per offensive
// group, the size of each feature table and the archetypes the tables are
// meant to separate. Defenders are listed only when their table has rows.
func Banner(w io.Writer, tables map[position.Group]*frame.Frame, counts map[position.Group]int) error {
	var parts []string
	total := 0
	for _, g := range position.Offense {
		parts = append(parts, fmt.Sprintf("%s=%d", g, counts[g]))
		total += counts[g]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Ready for archetype analysis: %d players (%s)\n", total, strings.Join(parts, " "))
	b.WriteString("Position groups ready for clustering:\n")
	for _, g := range position.All {
		n := tables[g].Len()
		if g == position.Defense && n == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d players\n", groupLabels[g], n)
	}
	fmt.Fprintf(&b, "- Combined Offensive: %d players\n", total)
	for _, e := range expectedArchetypes {
		fmt.Fprintf(&b, "Expected %s archetypes: %s\n", e.label, e.kinds)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func numbers(df *frame.Frame, col string) []float64 {
	var xs []float64
	df.Each(func(r frame.Record) {
		if v, ok := r.Num(col); ok {
			xs = append(xs, v)
		}
	})
	return xs
}
