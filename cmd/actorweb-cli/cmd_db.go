package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/db"
	"github.com/persistorai/actorweb/internal/dbpool"
	"github.com/persistorai/actorweb/internal/store"
)

var flagDatabaseURL string

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the PostgreSQL title catalog",
	}
	cmd.PersistentFlags().StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL URL (env: DATABASE_URL)")
	cmd.AddCommand(dbMigrateCmd())
	cmd.AddCommand(dbStatusCmd())
	cmd.AddCommand(dbSeedCmd())
	return cmd
}

func databaseURL() (string, error) {
	if flagDatabaseURL != "" {
		return flagDatabaseURL, nil
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v, nil
	}
	return "", errors.New("--database-url or DATABASE_URL is required")
}

func cliLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.InfoLevel)
	return log
}

func openPool(ctx context.Context) (*dbpool.Pool, error) {
	url, err := databaseURL()
	if err != nil {
		return nil, err
	}
	return dbpool.NewPool(ctx, url, 2)
}

func dbMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending catalog migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			return db.RunMigrations(cmd.Context(), pool, cliLogger(), nil)
		},
	}
}

func dbStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which catalog migrations are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := openPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			states, err := db.Status(cmd.Context(), pool, nil)
			if err != nil {
				return err
			}
			if flagFmt == "table" {
				rows := make([][]string, 0, len(states))
				for _, s := range states {
					rows = append(rows, []string{strconv.FormatInt(s.Version, 10), s.File, strconv.FormatBool(s.Applied)})
				}
				formatTable([]string{"VERSION", "FILE", "APPLIED"}, rows)
				return nil
			}
			output(states, strconv.Itoa(len(states)))
			return nil
		},
	}
}

func dbSeedCmd() *cobra.Command {
	var overwrite, truncate, skipMigrate bool
	cmd := &cobra.Command{
		Use:   "seed [catalog.json]",
		Short: "Load titles into the catalog (default: built-in demo catalog)",
		Long: `Load a JSON catalog file into PostgreSQL in one transaction.
Existing titles are skipped unless --overwrite is set. Invalid entries are
counted and skipped. Pending migrations are applied first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := cliLogger()

			mem := catalog.Demo()
			if len(args) == 1 {
				m, err := catalog.LoadFile(args[0])
				if err != nil {
					return err
				}
				mem = m
			}

			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if !skipMigrate {
				if err := db.RunMigrations(ctx, pool, log, nil); err != nil {
					return err
				}
			}

			seeds := store.NewSeedStore(store.Base{Pool: pool, Log: log})
			if truncate {
				if err := seeds.Truncate(ctx); err != nil {
					return err
				}
			}

			res, err := seeds.Seed(ctx, mem.Entities(), overwrite)
			if err != nil {
				return fmt.Errorf("seeding catalog: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Titles: %d written, %d skipped, %d invalid; %d cast credits\n",
				res.Written, res.Skipped, res.Invalid, res.Credits)
			output(res, strconv.Itoa(res.Written))
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing titles")
	cmd.Flags().BoolVar(&truncate, "truncate", false, "Remove every title first")
	cmd.Flags().BoolVar(&skipMigrate, "no-migrate", false, "Do not apply pending migrations")
	return cmd
}
