package pfr

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/position"
)

// DirSource reads saved season pages ({Dir}/passing.htm, rushing.htm, ...)
// instead of fetching them. The season is not part of the path.
type DirSource struct {
	Dir string
	Log logrus.FieldLogger
}

func (d DirSource) Collect(ctx context.Context, season int) map[position.Group]*frame.Frame {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	out := make(map[position.Group]*frame.Frame, len(position.All))
	for _, g := range position.All {
		out[g] = frame.Empty()
		if ctx.Err() != nil {
			continue
		}
		l := log.WithFields(logrus.Fields{"season": season, "group": g})
		path := filepath.Join(d.Dir, g.Category()+".htm")
		b, err := os.ReadFile(path)
		if err != nil {
			l.WithError(err).Warn("read failed")
			continue
		}
		df, err := ParseStatTable(string(b), g.Category())
		if err != nil {
			l.WithError(err).Warn("parse failed")
			continue
		}
		l.WithFields(logrus.Fields{"rows": df.Len(), "path": path}).Info("loaded")
		out[g] = df
	}
	return out
}
