package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	require.NoError(t, Configure(logger, &buf, "debug", "json"))

	LogRequest(logger, "req-1", "GET", "/", 200, 250*time.Millisecond)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, 0.25, entry["latency_seconds"])
	assert.Equal(t, "info", entry["level"])
}

func TestLogRequestLevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	require.NoError(t, Configure(logger, &buf, "info", "json"))

	LogRequest(logger, "req-2", "POST", "/tasks", 503, time.Millisecond)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestConfigureRejectsUnknownValues(t *testing.T) {
	logger := log.New()
	assert.Error(t, Configure(logger, &bytes.Buffer{}, "loud", "json"))
	assert.Error(t, Configure(logger, &bytes.Buffer{}, "info", "xml"))
}
