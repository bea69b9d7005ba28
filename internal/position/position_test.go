package position

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Group{
		"qb":        QB,
		"passing":   QB,
		"RB":        RB,
		"rushing":   RB,
		"WR_TE":     WRTE,
		"wr":        WRTE,
		"te":        WRTE,
		"receiving": WRTE,
		"defense":   Defense,
		"def":       Defense,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := Parse("K"); err == nil {
		t.Fatal("expected error for kicker")
	}
}

func TestCategoryAndShort(t *testing.T) {
	for _, g := range All {
		if g.Category() == "" || g.Short() == "" {
			t.Fatalf("%s has no category/short", g)
		}
	}
	if WRTE.Short() != "wr" || Defense.Short() != "def" || QB.Short() != "qb" {
		t.Fatal("unexpected short names")
	}
}
