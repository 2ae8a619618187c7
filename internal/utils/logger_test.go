package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "json")

	logger.WithField("pages", 5).Debug("Starting TMDB sync")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Starting TMDB sync", entry["msg"])
	assert.Equal(t, float64(5), entry["pages"])
}

func TestNewLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, "loud", "text")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewQueryLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "text")

	queryLogger := NewQueryLogger(logger)
	require.NotNil(t, queryLogger)
}
