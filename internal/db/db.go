package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// DB is the record store. It is safe for concurrent use.
type DB struct {
	sql     *sql.DB
	dialect dialect
	log     logrus.FieldLogger
}

type Option func(*DB)

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *DB) { d.log = log }
}

// Open connects to the backend named by dsn and applies pending migrations.
// postgres:// and postgresql:// URLs use PostgreSQL; anything else is a
// SQLite path, optionally prefixed with sqlite://.
func Open(ctx context.Context, dsn string, opts ...Option) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("backend url is required")
	}

	d := &DB{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	if isPostgres(dsn) {
		d.dialect = postgresDialect{}
		d.sql, err = sql.Open("pgx", dsn)
	} else {
		d.dialect = sqliteDialect{}
		d.sql, err = sql.Open("sqlite", sqlitePath(dsn))
		if err == nil {
			// one connection keeps :memory: databases whole and avoids SQLITE_BUSY
			d.sql.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := d.sql.PingContext(ctx); err != nil {
		_ = d.sql.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := d.migrate(ctx); err != nil {
		_ = d.sql.Close()
		return nil, err
	}

	return d, nil
}

func (d *DB) Close() error {
	return d.sql.Close()
}

// Dialect names the backend in use, "sqlite" or "postgres".
func (d *DB) Dialect() string {
	return d.dialect.name()
}

// Migrate applies pending migrations without opening a long-lived store.
func Migrate(ctx context.Context, dsn string, log logrus.FieldLogger) error {
	d, err := Open(ctx, dsn, WithLogger(log))
	if err != nil {
		return err
	}
	return d.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	dir, err := fs.Sub(migrationsFS, "migrations/"+d.dialect.name())
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	provider, err := goose.NewProvider(d.dialect.gooseDialect(), d.sql, dir)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, result := range results {
		d.log.WithFields(logrus.Fields{
			"version":  result.Source.Version,
			"duration": result.Duration.String(),
		}).Info("applied migration")
	}
	return nil
}

func (d *DB) logQuery(query string, args []any, err error, started time.Time) {
	entry := d.log.WithFields(logrus.Fields{
		"query":           query,
		"args":            len(args),
		"latency_seconds": time.Since(started).Seconds(),
	})
	if err != nil {
		entry.WithError(err).Debug("database query failed")
		return
	}
	entry.Debug("database query executed")
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func sqlitePath(dsn string) string {
	return strings.TrimPrefix(dsn, "sqlite://")
}

type dialect interface {
	name() string
	gooseDialect() goose.Dialect
	placeholder(n int) string
	encode(v any) any
}

type sqliteDialect struct{}

func (sqliteDialect) name() string                { return "sqlite" }
func (sqliteDialect) gooseDialect() goose.Dialect { return goose.DialectSQLite3 }
func (sqliteDialect) placeholder(int) string      { return "?" }

// encode stores times as fixed-width UTC text so that ORDER BY on the column
// is chronological.
func (sqliteDialect) encode(v any) any {
	switch value := v.(type) {
	case time.Time:
		return value.UTC().Format(timeLayout)
	case *time.Time:
		if value == nil {
			return nil
		}
		return value.UTC().Format(timeLayout)
	}
	return v
}

type postgresDialect struct{}

func (postgresDialect) name() string                { return "postgres" }
func (postgresDialect) gooseDialect() goose.Dialect { return goose.DialectPostgres }
func (postgresDialect) placeholder(n int) string    { return fmt.Sprintf("$%d", n) }

func (postgresDialect) encode(v any) any {
	switch value := v.(type) {
	case time.Time:
		return value.UTC()
	case *time.Time:
		if value == nil {
			return nil
		}
		return value.UTC()
	}
	return v
}
