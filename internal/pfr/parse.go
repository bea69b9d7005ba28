package pfr

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/tyler180/nfl-archetypes/internal/frame"
)

// PFR header spellings mapped onto the column names the pipeline uses.
var headerAliases = map[string]string{
	"Tm":    "Team",
	"Pos":   "Position",
	"Ctch%": "Rec%",
}

// ParseStatTable reads the table with the given id from a PFR page. Tables
// PFR ships inside HTML comments are found too. The header is the last thead
// row; repeated names get a pandas-style suffix (Yds, Yds.1). Header-repeat
// rows in the body are kept as data. A Player_ID column is added from the
// player link when the table has one.
func ParseStatTable(html, tableID string) (*frame.Frame, error) {
	uncommented := strings.ReplaceAll(html, "<!--", "")
	uncommented = strings.ReplaceAll(uncommented, "-->", "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(uncommented))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table#" + tableID).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("table %q not found", tableID)
	}

	var raw []string
	table.Find("thead tr").Last().Find("th,td").Each(func(_ int, h *goquery.Selection) {
		name := strings.TrimSpace(h.Text())
		if name == "" {
			name = h.AttrOr("data-stat", "")
		}
		raw = append(raw, name)
	})
	if len(raw) == 0 {
		return nil, fmt.Errorf("table %q has no header", tableID)
	}
	cols := dedupeHeaders(raw)

	playerIdx := -1
	for i, c := range cols {
		if c == "Player" {
			playerIdx = i
			break
		}
	}
	if playerIdx >= 0 {
		cols = append(cols, "Player_ID")
	}

	var rows [][]frame.Value
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Children().Filter("th,td")
		if cells.Length() == 0 {
			return
		}
		row := make([]frame.Value, 0, len(cols))
		cells.Each(func(_ int, td *goquery.Selection) {
			row = append(row, frame.Str(strings.TrimSpace(td.Text())))
		})
		if playerIdx >= 0 {
			row = padTo(row, len(cols)-1)
			row = append(row, playerID(cells.Eq(playerIdx)))
		}
		rows = append(rows, row)
	})
	return frame.New(cols, rows), nil
}

// dedupeHeaders applies the aliases and suffixes later duplicates with .1, .2.
func dedupeHeaders(in []string) []string {
	seen := make(map[string]int, len(in))
	out := make([]string, len(in))
	for i, h := range in {
		if a, ok := headerAliases[h]; ok {
			h = a
		}
		n := seen[h]
		seen[h] = n + 1
		if n > 0 {
			h = fmt.Sprintf("%s.%d", h, n)
		}
		out[i] = h
	}
	return out
}

// playerID reads the PFR id (e.g. MahoPa00) from the player cell.
func playerID(s *goquery.Selection) frame.Value {
	if id := strings.TrimSpace(s.AttrOr("data-append-csv", "")); id != "" {
		return frame.Str(id)
	}
	href, ok := s.Find("a").Attr("href")
	if !ok || href == "" {
		return frame.Null()
	}
	parts := strings.Split(href, "/")
	return frame.Str(strings.TrimSuffix(parts[len(parts)-1], ".htm"))
}

func padTo(row []frame.Value, n int) []frame.Value {
	for len(row) < n {
		row = append(row, frame.Null())
	}
	return row[:n]
}

// DumpTables logs every table id with its first header row at debug level.
func DumpTables(html string, log logrus.FieldLogger) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	doc.Find("table").Each(func(i int, t *goquery.Selection) {
		id, _ := t.Attr("id")
		var heads []string
		t.Find("thead tr").Last().Find("th,td").Each(func(_ int, h *goquery.Selection) {
			if txt := strings.TrimSpace(h.Text()); txt != "" {
				heads = append(heads, txt)
			}
		})
		log.WithFields(logrus.Fields{"index": i, "id": id, "headers": strings.Join(heads, "|")}).Debug("table")
	})
}
