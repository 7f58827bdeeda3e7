package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/utafrali/catalog-fixtures/internal/app"
	"github.com/utafrali/catalog-fixtures/internal/config"
	"github.com/utafrali/catalog-fixtures/internal/fixture"
	apperrors "github.com/utafrali/catalog-fixtures/pkg/errors"
	"github.com/utafrali/catalog-fixtures/pkg/health"
	"github.com/utafrali/catalog-fixtures/pkg/logger"
)

const defaultSuite = "default"

// cli holds the command tree and the state its PersistentPreRunE prepares.
type cli struct {
	root   *cobra.Command
	cfg    *config.Config
	logger *slog.Logger
}

func newCLI() *cli {
	c := &cli{}
	c.root = &cobra.Command{
		Use:           "fixtures",
		Short:         "Seed the catalog database with fixture data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.New("catalog-fixtures", cfg.LogLevel)
			return nil
		},
	}
	c.root.AddCommand(c.listCmd(), c.loadCmd(), c.runCmd(), c.checkCmd())
	return c
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := app.FixtureNames(c.logger)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func (c *cli) loadCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load [suite]",
		Short: "Run a fixture suite from a suites file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suite := defaultSuite
			if len(args) == 1 {
				suite = args[0]
			}
			if file == "" {
				file = c.cfg.FixturesFile
			}
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				c.logger.InfoContext(ctx, "loading suite",
					slog.String("suite", suite),
					slog.String("file", file),
				)
				return a.LoadSuite(ctx, file, suite)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "suites file (default $FIXTURES_FILE or fixtures.yaml)")
	return cmd
}

func (c *cli) runCmd() *cobra.Command {
	var amount int
	cmd := &cobra.Command{
		Use:   "run <fixture>",
		Short: "Run a single fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]any{}
			if cmd.Flags().Changed("amount") {
				values["amount"] = amount
			}
			opts, err := fixture.NewOptions(values)
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.RunFixture(ctx, args[0], opts)
			})
		},
	}
	cmd.Flags().IntVarP(&amount, "amount", "n", 0, "number of records to generate")
	return cmd
}

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the backends a run depends on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := app.Check(cmd.Context(), c.cfg, c.logger)
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if report.Status == health.StatusDown {
				return apperrors.ServiceUnavailable("a critical backend is down")
			}
			return nil
		},
	}
}

// withApp connects an App for the duration of fn.
func (c *cli) withApp(ctx context.Context, fn func(context.Context, *app.App) error) (err error) {
	c.logger.Info("starting catalog fixtures",
		slog.String("environment", c.cfg.Environment),
		slog.String("product_loader", c.cfg.ProductLoader),
	)

	a, err := app.NewApp(ctx, c.cfg, c.logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if serr := a.Shutdown(); serr != nil && err == nil {
			err = fmt.Errorf("shutdown: %w", serr)
		}
	}()

	if err := fn(ctx, a); err != nil {
		return err
	}
	c.logger.Info("catalog fixtures finished")
	return nil
}
