package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/domain/interfaces"
	"github.com/secmon-lab/avsafe/pkg/repository/firestore"
	"github.com/secmon-lab/avsafe/pkg/repository/memory"
	"github.com/secmon-lab/avsafe/pkg/repository/sqldb"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend     string
	projectID   string
	databaseID  string
	databaseURL string
	autoMigrate bool
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore, postgres or sqlite)",
			Category:    "Repository",
			Value:       BackendMemory,
			Sources:     cli.EnvVars("AVSAFE_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("AVSAFE_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("AVSAFE_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "database-url",
			Usage:       "PostgreSQL connection URL, or SQLite database file path",
			Category:    "Repository",
			Sources:     cli.EnvVars("AVSAFE_DATABASE_URL"),
			Destination: &r.databaseURL,
		},
		&cli.BoolFlag{
			Name:        "auto-migrate",
			Usage:       "Apply pending SQL migrations on startup",
			Category:    "Repository",
			Sources:     cli.EnvVars("AVSAFE_AUTO_MIGRATE"),
			Destination: &r.autoMigrate,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.Int("database_url.len", len(r.databaseURL)),
		slog.Bool("auto_migrate", r.autoMigrate),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// IsSQL reports whether the backend is a relational database
func (r *Repository) IsSQL() bool {
	return r.backend == BackendPostgres || r.backend == BackendSQLite
}

// OpenSQL connects to the configured postgres or sqlite database without
// running migrations.
func (r *Repository) OpenSQL(ctx context.Context) (*sqldb.DB, error) {
	if r.databaseURL == "" {
		return nil, goerr.Wrap(ErrMissingSettings, "database-url is required for SQL backends",
			goerr.V(BackendKey, r.backend))
	}

	switch r.backend {
	case BackendPostgres:
		return sqldb.OpenPostgres(ctx, r.databaseURL)
	case BackendSQLite:
		return sqldb.OpenSQLite(ctx, r.databaseURL)
	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "backend is not a SQL database", goerr.V(BackendKey, r.backend))
	}
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingSettings, "firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, firestore.WithIndexedQueries())
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendPostgres, BackendSQLite:
		db, err := r.OpenSQL(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize SQL repository", goerr.V(BackendKey, r.backend))
		}
		if r.autoMigrate {
			if _, err := db.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, goerr.Wrap(err, "failed to migrate database", goerr.V(BackendKey, r.backend))
			}
		}
		logging.Default().Info("Using SQL repository", "dialect", db.Dialect(), "auto_migrate", r.autoMigrate)
		return db, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V(BackendKey, r.backend))
	}
}
