package main

import (
	"fmt"
	"os"
	"strconv"

	"futuristic-todo-api/internal/config"
	"futuristic-todo-api/internal/database"
	"futuristic-todo-api/internal/migration"
	"futuristic-todo-api/internal/ordering"
	"futuristic-todo-api/internal/storage"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool for the todo API",
		Long: `Database migration tool for the todo API.

Connection settings come from config.toml (or CONFIG_FILE) and the
DB_DRIVER, DB_PATH, DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME and
DB_SSL_MODE environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	// withMigrator opens a migrator for the duration of one command
	withMigrator := func(fn func(cmd *cobra.Command, m *migration.Migrator, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			m, err := migration.New(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create migrator: %w", err)
			}
			defer m.Close()
			return fn(cmd, m, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				if err := m.Up(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✅ Migrations applied successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Rollback the last migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				if err := m.Down(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✅ Migration rolled back successfully")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show current migration version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if dirty {
					fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d (dirty)\n", version)
					fmt.Fprintln(cmd.OutOrStdout(), "⚠️  Warning: Database is in a dirty state. Use 'force' command to fix.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current version: %d\n", version)
				return nil
			}),
		},
		&cobra.Command{
			Use:     "steps <n>",
			Short:   "Run n migrations (positive = up, negative = down)",
			Example: "  migrate steps 2\n  migrate steps -- -1",
			Args:    cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid number of steps: %w", err)
				}
				if err := m.Steps(n); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Successfully ran %d migration steps\n", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Force set the migration version (use with caution)",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(cmd *cobra.Command, m *migration.Migrator, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version number: %w", err)
				}
				if err := m.Force(version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Forced migration version to %d\n", version)
				fmt.Fprintln(cmd.OutOrStdout(), "⚠️  Warning: This does not run migrations. Make sure database state matches the forced version.")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "compact",
			Short: "Renumber todo orders to 1..n, removing gaps and ties",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				db, err := database.Connect(&cfg.Database)
				if err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer database.Close(db)

				changed, err := ordering.NewManager(storage.NewGormStore(db)).Normalize(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ Compacted todo order (%d todos renumbered)\n", changed)
				return nil
			},
		},
	)

	return root
}
