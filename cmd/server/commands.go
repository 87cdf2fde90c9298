package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func (o *rootOptions) load() (*config.Config, error) {
	return loadAppConfig(o.configPath, o.logLevel)
}

// newRootCmd builds the silabas command tree.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "silabas",
		Short: "Spanish syllable literacy service",
		Long: `silabas serves the consonant catalog, word generation, activity sessions
and progress tracking API for early Spanish readers.

Configuration is read from config.yaml (or --config) and SILABAS_* environment
variables, e.g. SILABAS_SERVER_PORT or SILABAS_AUTH_JWT_SECRET.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newHashPasswordCmd(opts),
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap(ctx, cfg)
			if err != nil {
				return err
			}

			if migrate {
				if err := applyMigrations(ctx, app.db, app.logger); err != nil {
					app.cleanup()
					return err
				}
			}

			if err := app.enableTelemetry(ctx); err != nil {
				app.cleanup()
				return fmt.Errorf("failed to set up telemetry: %w", err)
			}

			return app.startHTTPServer(ctx, app.setupRouter())
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(action func(ctx context.Context, cmd *cobra.Command, app *application) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			app, err := bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.cleanup()
			return action(cmd.Context(), cmd, app)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, _ *cobra.Command, app *application) error {
				return applyMigrations(ctx, app.db, app.logger)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, _ *cobra.Command, app *application) error {
				migrator, err := newMigrator(app.db, app.logger)
				if err != nil {
					return err
				}
				return migrator.Down(ctx)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, cmd *cobra.Command, app *application) error {
				migrator, err := newMigrator(app.db, app.logger)
				if err != nil {
					return err
				}
				statuses, err := migrator.Status(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
				for _, s := range statuses {
					state, appliedAt := "pending", "-"
					if s.Applied {
						state = "applied"
						appliedAt = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Version, state, appliedAt, s.Path)
				}
				return tw.Flush()
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, cmd *cobra.Command, app *application) error {
				migrator, err := newMigrator(app.db, app.logger)
				if err != nil {
					return err
				}
				version, err := migrator.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return nil
			}),
		},
	)
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default consonant catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			app, err := bootstrap(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.cleanup()

			inserted, err := app.consonantService.SeedConsonants(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d consonants\n", inserted)
			return nil
		},
	}
}

// newHashPasswordCmd prints bcrypt hashes at the configured cost, one per
// argument or per stdin line, for provisioning accounts directly in SQL.
func newHashPasswordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password...]",
		Short: "Print bcrypt hashes for passwords",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)

			passwords := args
			if len(passwords) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimSpace(scanner.Text()); line != "" {
						passwords = append(passwords, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read passwords: %w", err)
				}
			}
			if len(passwords) == 0 {
				return errors.New("no password given")
			}

			for _, password := range passwords {
				hash, err := hasher.Hash(password)
				if err != nil {
					return fmt.Errorf("failed to hash password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
			}
			return nil
		},
	}
}
