package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/avsafe/pkg/cli/config"
	httpctrl "github.com/secmon-lab/avsafe/pkg/controller/http"
	"github.com/secmon-lab/avsafe/pkg/service/metrics"
	"github.com/secmon-lab/avsafe/pkg/service/worker"
	"github.com/secmon-lab/avsafe/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var digestSchedule string
	var digestTimezone string
	var appCfg config.App
	var repoCfg config.Repository
	var slackCfg config.Slack
	var exportCfg config.Export

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("AVSAFE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "digest-schedule",
			Usage:       "Cron schedule of the SLA digest (empty disables the digest worker)",
			Category:    "Digest",
			Value:       worker.DefaultDigestSchedule,
			Sources:     cli.EnvVars("AVSAFE_DIGEST_SCHEDULE"),
			Destination: &digestSchedule,
		},
		&cli.StringFlag{
			Name:        "digest-timezone",
			Usage:       "IANA time zone the digest schedule is evaluated in",
			Category:    "Digest",
			Value:       "UTC",
			Sources:     cli.EnvVars("AVSAFE_DIGEST_TIMEZONE"),
			Destination: &digestTimezone,
		},
	}

	// Add shared config flags
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, exportCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			m := metrics.New()

			rt, err := newRuntime(ctx, runtimeConfig{
				app:     &appCfg,
				repo:    &repoCfg,
				slack:   &slackCfg,
				export:  &exportCfg,
				metrics: m,
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			// Start SLA digest worker unless disabled
			var digestWorker *worker.DigestWorker
			if digestSchedule != "" {
				loc, err := time.LoadLocation(digestTimezone)
				if err != nil {
					return goerr.Wrap(err, "invalid digest timezone", goerr.V("timezone", digestTimezone))
				}
				digestWorker, err = worker.NewDigestWorker(rt.uc.Digest, digestSchedule, worker.WithLocation(loc))
				if err != nil {
					return goerr.Wrap(err, "failed to create digest worker")
				}
				if err := digestWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start digest worker")
				}
			} else {
				logging.Default().Info("SLA digest worker disabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(rt.uc, httpctrl.WithMetrics(m)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"app", appCfg,
					"repository", repoCfg,
					"slack", slackCfg,
					"digest_schedule", digestSchedule,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if digestWorker != nil {
					digestWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop digest worker first so no run starts during shutdown
				if digestWorker != nil {
					digestWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
