package logger

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the run logger. Reports go to stdout, so logs are written to w
// (stderr in the binaries). An unknown level falls back to info.
func New(level, format string, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid LOG_LEVEL, using INFO")
	}
	return log
}

// WithRun tags entries with the season being processed.
func WithRun(log logrus.FieldLogger, season int) *logrus.Entry {
	return log.WithField("season", season)
}
