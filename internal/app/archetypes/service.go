// Package archetypes wires configuration into a pipeline runner for both the
// CLI and the Lambda.
package archetypes

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/tyler180/nfl-archetypes/internal/ath"
	appcfg "github.com/tyler180/nfl-archetypes/internal/config"
	"github.com/tyler180/nfl-archetypes/internal/frame"
	"github.com/tyler180/nfl-archetypes/internal/logger"
	"github.com/tyler180/nfl-archetypes/internal/pfr"
	"github.com/tyler180/nfl-archetypes/internal/pipeline"
	"github.com/tyler180/nfl-archetypes/internal/position"
	"github.com/tyler180/nfl-archetypes/internal/store"
)

// Clients holds the AWS APIs the sinks need. A nil field disables the sinks
// that use it.
type Clients struct {
	S3       store.S3API
	DynamoDB interface {
		store.DynamoDBAPI
		store.DynamoDBReadAPI
	}
	Athena ath.AthenaAPI
}

// NeedsAWS reports whether any cloud sink is configured.
func NeedsAWS(cfg *appcfg.Config) bool {
	a := cfg.AWS
	return a.TableName != "" || a.S3Bucket != "" || a.AthenaDB != ""
}

// NewClients loads the default AWS config and builds the clients the
// configuration asks for.
func NewClients(ctx context.Context, cfg *appcfg.Config) (*Clients, error) {
	if !NeedsAWS(cfg) {
		return &Clients{}, nil
	}
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	c := &Clients{}
	if cfg.AWS.S3Bucket != "" {
		c.S3 = s3.NewFromConfig(awsCfg)
	}
	if cfg.AWS.TableName != "" {
		c.DynamoDB = dynamodb.NewFromConfig(awsCfg)
	}
	if cfg.AWS.AthenaDB != "" {
		c.Athena = athena.NewFromConfig(awsCfg)
	}
	return c, nil
}

// NewLogger builds the run logger from cfg. Logs go to stderr so reports on
// stdout stay clean.
func NewLogger(cfg *appcfg.Config) *logrus.Logger {
	return logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}

// NewRunner assembles the source, sinks and catalog for cfg.
func NewRunner(cfg *appcfg.Config, clients *Clients, log logrus.FieldLogger, report io.Writer) *pipeline.Runner {
	if clients == nil {
		clients = &Clients{}
	}
	r := &pipeline.Runner{
		Source:     Source(cfg, log),
		Thresholds: cfg.Thresholds,
		Log:        log,
		Report:     report,
	}

	if cfg.OutDir != "" {
		r.Sinks = append(r.Sinks, store.CSVSink{Dir: cfg.OutDir, Log: log})
	}
	var s3sink *store.S3Sink
	if cfg.AWS.S3Bucket != "" && clients.S3 != nil {
		s3sink = &store.S3Sink{Client: clients.S3, Bucket: cfg.AWS.S3Bucket, Prefix: cfg.AWS.S3Prefix, Log: log}
		r.Sinks = append(r.Sinks, *s3sink)
	}
	if cfg.AWS.TableName != "" && clients.DynamoDB != nil {
		r.Sinks = append(r.Sinks, store.DynamoSink{Client: clients.DynamoDB, Table: cfg.AWS.TableName, Log: log})
	}
	if cfg.AWS.AthenaDB != "" && clients.Athena != nil && s3sink != nil {
		r.Catalog = pipeline.AthenaCatalog{
			Athena: &ath.Runner{
				Client:    clients.Athena,
				Workgroup: cfg.AWS.AthenaWorkgroup,
				Database:  cfg.AWS.AthenaDB,
				OutputS3:  cfg.AWS.AthenaOutput,
				Log:       log,
				Poll:      800 * time.Millisecond,
			},
			S3: *s3sink,
		}
	}
	return r
}

// Source reads saved pages when HTMLDir is set and fetches otherwise.
func Source(cfg *appcfg.Config, log logrus.FieldLogger) pfr.Source {
	if cfg.HTMLDir != "" {
		return pfr.DirSource{Dir: cfg.HTMLDir, Log: log}
	}
	return pfr.NewClient(cfg.PFR(), log)
}

// Load reads a saved season back, from DynamoDB when a table and client are
// configured, else from the CSV directory. Missing tables come back empty.
func Load(ctx context.Context, cfg *appcfg.Config, clients *Clients, season int) (*pipeline.Result, error) {
	res := &pipeline.Result{Season: season, Features: make(map[position.Group]*frame.Frame, len(position.All))}

	read := func(ds store.Dataset) (*frame.Frame, error) {
		if cfg.AWS.TableName != "" && clients != nil && clients.DynamoDB != nil {
			return store.LoadFeatureRows(ctx, clients.DynamoDB, cfg.AWS.TableName, season, ds.Group)
		}
		return store.LoadCSV(cfg.OutDir, ds)
	}

	for _, ds := range res.Datasets() {
		df, err := read(ds)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ds.Name(), err)
		}
		if ds.IsCombined() {
			res.Combined = df
		} else {
			res.Features[ds.Group] = df
		}
	}
	return res, nil
}
