package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pressly/goose/v3"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect selects the SQL flavour and the migration set
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) gooseDialect() goose.Dialect {
	if d == DialectPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// DB is a relational report store backed by database/sql
type DB struct {
	db      *sql.DB
	dialect Dialect
	report  *reportRepository
}

var _ interfaces.Repository = &DB{}

// OpenPostgres connects with a postgres:// URL through the pgx driver
func OpenPostgres(ctx context.Context, url string) (*DB, error) {
	return open(ctx, DialectPostgres, url)
}

// OpenSQLite opens or creates the database file at path. ":memory:" is
// accepted for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	db, err := open(ctx, DialectSQLite, dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps writers serialized and lets ":memory:"
	// survive across queries
	db.db.SetMaxOpenConns(1)
	return db, nil
}

func open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dialect", dialect))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("dialect", dialect))
	}

	return &DB{
		db:      db,
		dialect: dialect,
		report:  newReportRepository(db, dialect),
	}, nil
}

func (x *DB) provider() (*goose.Provider, error) {
	sub, err := fs.Sub(migrationsFS, "migrations/"+string(x.dialect))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open migrations", goerr.V("dialect", x.dialect))
	}
	p, err := goose.NewProvider(x.dialect.gooseDialect(), x.db, sub)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create migration provider", goerr.V("dialect", x.dialect))
	}
	return p, nil
}

// Migrate applies all pending migrations and returns the resulting version
func (x *DB) Migrate(ctx context.Context) (int64, error) {
	p, err := x.provider()
	if err != nil {
		return 0, err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to apply migrations", goerr.V("dialect", x.dialect))
	}
	for _, r := range results {
		logging.From(ctx).Info("migration applied",
			"version", r.Source.Version,
			"path", r.Source.Path,
			"duration", r.Duration)
	}

	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to read schema version")
	}
	return version, nil
}

// Pending lists migration versions not yet applied
func (x *DB) Pending(ctx context.Context) ([]int64, error) {
	p, err := x.provider()
	if err != nil {
		return nil, err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read migration status", goerr.V("dialect", x.dialect))
	}

	var pending []int64
	for _, st := range statuses {
		if st.State == goose.StatePending {
			pending = append(pending, st.Source.Version)
		}
	}
	return pending, nil
}

func (x *DB) Dialect() Dialect {
	return x.dialect
}

func (x *DB) Report() interfaces.ReportRepository {
	return x.report
}

func (x *DB) Close() error {
	return x.db.Close()
}

// rebind turns ? placeholders into $n for postgres
func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
