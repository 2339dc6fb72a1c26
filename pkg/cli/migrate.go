package cli

import (
	"context"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/cli/config"
	"github.com/secmon-lab/avsafe/pkg/repository/firestore"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Apply SQL schema migrations or Firestore indexes",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Migrate configuration",
				"repository", repoCfg,
				"dryRun", dryRun)

			switch {
			case repoCfg.IsSQL():
				return migrateSQL(ctx, &repoCfg, dryRun)
			case repoCfg.Backend() == config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)
			default:
				logging.Default().Info("Nothing to migrate for backend", "backend", repoCfg.Backend())
				return nil
			}
		},
	}
}

func migrateSQL(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	db, err := repoCfg.OpenSQL(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err.Error())
		}
	}()

	if dryRun {
		pending, err := db.Pending(ctx)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}
		if len(pending) == 0 {
			logger.Info("No changes required")
			return nil
		}
		for _, v := range pending {
			logger.Info("Migration step", "dialect", db.Dialect(), "version", v)
		}
		return nil
	}

	logger.Info("Applying migrations", "dialect", db.Dialect())
	version, err := db.Migrate(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully", "version", version)
	return nil
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()

	if repoCfg.ProjectID() == "" {
		return goerr.Wrap(config.ErrMissingSettings, "firestore-project-id is required")
	}

	indexConfig := getIndexConfig()

	client, err := fireconf.NewClient(ctx, repoCfg.ProjectID(), repoCfg.DatabaseID())
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
		plan, err := client.GetMigrationPlan(ctx, indexConfig)
		if err != nil {
			return goerr.Wrap(err, "failed to create migration plan")
		}

		if len(plan.Steps) == 0 {
			logger.Info("No changes required")
			return nil
		}

		for _, step := range plan.Steps {
			logger.Info("Migration step",
				"collection", step.Collection,
				"operation", step.Operation,
				"description", step.Description,
				"destructive", step.Destructive)
		}
		return nil
	}

	logger.Info("Applying migrations")
	if err := client.Migrate(ctx, indexConfig); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully")
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: firestore.ReportsCollection,
				Indexes: []fireconf.Index{
					// List by type: report_type ASC, created_at DESC, report_number DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "report_type", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderDescending},
							{Path: "report_number", Order: fireconf.OrderDescending},
						},
					},
				},
			},
		},
	}
}
