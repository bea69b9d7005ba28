package archetypes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	appcfg "github.com/tyler180/nfl-archetypes/internal/config"
	"github.com/tyler180/nfl-archetypes/internal/pipeline"
	"github.com/tyler180/nfl-archetypes/internal/store"
)

// LambdaEntrypoint runs one season from env configuration. The event may
// override the season. Local CSV output is off unless OUT_DIR is set, since
// only /tmp is writable in Lambda.
func LambdaEntrypoint(ctx context.Context, raw Raw) (*Response, error) {
	var e Event
	_ = json.Unmarshal(raw, &e)

	cfg, err := appcfg.Load("")
	if err != nil {
		return nil, err
	}
	if os.Getenv("OUT_DIR") == "" {
		cfg.OutDir = ""
	}
	log := NewLogger(cfg)

	clients, err := NewClients(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Handle(ctx, e, cfg, clients, log)
}

// Handle applies the event to cfg and runs the pipeline.
func Handle(ctx context.Context, e Event, cfg *appcfg.Config, clients *Clients, log logrus.FieldLogger) (*Response, error) {
	if e.Season != 0 {
		cfg.Season = e.Season
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	runner := NewRunner(cfg, clients, log, nil)
	res, err := runner.Run(ctx, cfg.Season)
	if err != nil {
		return nil, err
	}

	out := &Response{OK: true, Season: cfg.Season, Features: map[string]int{}, Combined: map[string]int{}}
	for g, df := range res.Features {
		out.Features[g.String()] = df.Len()
	}
	for g, n := range res.Counts() {
		out.Combined[g.String()] = n
	}
	if cfg.AWS.S3Bucket != "" {
		out.Parquet = pipeline.AthenaCatalog{S3: store.S3Sink{Bucket: cfg.AWS.S3Bucket, Prefix: cfg.AWS.S3Prefix}}.Location(cfg.Season)
	}
	if res.Combined.IsEmpty() {
		out.Message = "combined dataset is empty"
	}
	return out, nil
}
