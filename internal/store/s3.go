package store

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads each table as CSV under {Prefix}/csv/season={season}/ and
// the combined table also as Parquet under {Prefix}/combined/season={season}/.
type S3Sink struct {
	Client S3API
	Bucket string
	Prefix string
	Log    logrus.FieldLogger
}

func (s S3Sink) CSVKey(ds Dataset) string {
	return path.Join(s.prefix(), "csv", fmt.Sprintf("season=%d", ds.Season), ds.Name()+".csv")
}

// ParquetDir is the S3 prefix holding the combined Parquet for season.
func (s S3Sink) ParquetDir(season int) string {
	return path.Join(s.prefix(), "combined", fmt.Sprintf("season=%d", season)) + "/"
}

func (s S3Sink) ParquetKey(ds Dataset) string {
	return s.ParquetDir(ds.Season) + ds.Name() + ".parquet"
}

func (s S3Sink) prefix() string { return strings.Trim(s.Prefix, "/") }

func (s S3Sink) Save(ctx context.Context, ds Dataset) error {
	if ds.Frame.IsEmpty() {
		return nil
	}
	b, err := csvBytes(ds.Frame)
	if err != nil {
		return err
	}
	if err := s.put(ctx, s.CSVKey(ds), "text/csv", b); err != nil {
		return err
	}
	if !ds.IsCombined() {
		return nil
	}
	pq, err := parquetBytes(ds.Frame)
	if err != nil {
		return fmt.Errorf("parquet %s: %w", ds.Name(), err)
	}
	return s.put(ctx, s.ParquetKey(ds), "application/vnd.apache.parquet", pq)
}

func (s S3Sink) put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.Bucket, key, err)
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"bucket": s.Bucket, "key": key, "bytes": len(body)}).Info("uploaded")
	}
	return nil
}
