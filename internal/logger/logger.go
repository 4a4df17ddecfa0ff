package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Init configures the standard logger. format is "json" or "text".
func Init(level, format string) error {
	return Configure(log.StandardLogger(), os.Stdout, level, format)
}

func Configure(logger *log.Logger, out io.Writer, level, format string) error {
	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		logger.SetFormatter(&log.JSONFormatter{})
	case "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	logger.SetOutput(out)
	logger.SetLevel(parsed)
	return nil
}

func LogRequest(logger log.FieldLogger, requestID, method, path string, status int, latency time.Duration) {
	entry := logger.WithFields(log.Fields{
		"request_id":      requestID,
		"method":          method,
		"path":            path,
		"status":          status,
		"latency_seconds": latency.Seconds(),
	})
	switch {
	case status >= 500:
		entry.Error("request failed")
	case status >= 400:
		entry.Warn("request rejected")
	default:
		entry.Info("request served")
	}
}
