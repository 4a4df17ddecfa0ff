// Package gateway turns task intents into record-store writes and the
// matching history entries, always scoped to the acting user.
package gateway

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Joseda-hg/taskflow/internal/db"
	"github.com/Joseda-hg/taskflow/internal/model"
)

const tracerName = "taskflow/gateway"

type Gateway struct {
	store    *db.DB
	log      logrus.FieldLogger
	now      func() time.Time
	profiles *ristretto.Cache[string, struct{}]

	profileCacheSize int64
}

type Option func(*Gateway)

func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Gateway) { g.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithProfileCacheSize bounds how many users are remembered as having a
// profile row.
func WithProfileCacheSize(n int64) Option {
	return func(g *Gateway) { g.profileCacheSize = n }
}

func New(store *db.DB, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		store:            store,
		log:              logrus.StandardLogger(),
		now:              time.Now,
		profileCacheSize: 10_000,
	}
	for _, opt := range opts {
		opt(g)
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, struct{}]{
		NumCounters: g.profileCacheSize * 10,
		MaxCost:     g.profileCacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	g.profiles = cache
	return g, nil
}

func (g *Gateway) Close() {
	g.profiles.Close()
}

// timestamp is the write time, truncated so both backends store it exactly.
func (g *Gateway) timestamp() time.Time {
	return g.now().UTC().Truncate(time.Microsecond)
}

func startSpan(ctx context.Context, name string, user model.User, taskID int64) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("user.id", user.ID)}
	if taskID != 0 {
		attrs = append(attrs, attribute.Int64("task.id", taskID))
	}
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
