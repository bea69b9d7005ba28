package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	WithRun(log, 2024).WithField("group", "QB").Info("saved csv")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "saved csv", entry["msg"])
	assert.Equal(t, "QB", entry["group"])
	assert.Equal(t, float64(2024), entry["season"])
}

func TestNew_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("chatty", "text", &buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid LOG_LEVEL")
}
