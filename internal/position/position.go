package position

import (
	"fmt"
	"strings"
)

// Group is a position group label. Receivers and tight ends share WR_TE.
type Group string

const (
	QB      Group = "QB"
	RB      Group = "RB"
	WRTE    Group = "WR_TE"
	Defense Group = "DEFENSE"
)

// Offense is the order groups appear in the combined dataset.
var Offense = []Group{QB, RB, WRTE}

// All lists every group in collection order.
var All = []Group{QB, RB, WRTE, Defense}

// Category is the PFR season page that feeds the group
// (https://www.pro-football-reference.com/years/{season}/{category}.htm).
func (g Group) Category() string {
	switch g {
	case QB:
		return "passing"
	case RB:
		return "rushing"
	case WRTE:
		return "receiving"
	case Defense:
		return "defense"
	}
	return ""
}

// Short is the file-name tag used for persisted feature tables.
func (g Group) Short() string {
	switch g {
	case WRTE:
		return "wr"
	case Defense:
		return "def"
	}
	return strings.ToLower(string(g))
}

func (g Group) String() string { return string(g) }

// Parse accepts a group label, a category name or a file tag.
func Parse(s string) (Group, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, g := range All {
		if s == string(g) || s == strings.ToUpper(g.Category()) || s == strings.ToUpper(g.Short()) {
			return g, nil
		}
	}
	switch s {
	case "WR", "TE", "WR/TE", "PASS_CATCHER":
		return WRTE, nil
	}
	return "", fmt.Errorf("unknown position group %q", s)
}
