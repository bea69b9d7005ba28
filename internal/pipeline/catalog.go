package pipeline

import (
	"context"
	"fmt"

	"github.com/tyler180/nfl-archetypes/internal/ath"
	"github.com/tyler180/nfl-archetypes/internal/store"
)

// AthenaCatalog points an Athena table at the Parquet the S3 sink wrote.
type AthenaCatalog struct {
	Athena *ath.Runner
	S3     store.S3Sink
}

func (c AthenaCatalog) Location(season int) string {
	return fmt.Sprintf("s3://%s/%s", c.S3.Bucket, c.S3.ParquetDir(season))
}

func (c AthenaCatalog) Register(ctx context.Context, season int) error {
	_, err := c.Athena.Register(ctx, season, c.Location(season))
	return err
}
