package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/satishbabariya/nestql/internal/adapters/database"
	"github.com/satishbabariya/nestql/internal/cli/ui"
	"github.com/satishbabariya/nestql/internal/config"
	"github.com/satishbabariya/nestql/internal/core/query/driver"
	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/satishbabariya/nestql/internal/filterdsl"
	"github.com/satishbabariya/nestql/internal/queryfile"
	"github.com/satishbabariya/nestql/internal/watch"
	"github.com/satishbabariya/nestql/pkg/engine"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	var (
		queryPath  string
		filterExpr string
		watchMode  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a query document",
		Long:  "Load a JSON query document, run it against the configured database and print the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if queryPath == "" {
				queryPath = cfg.QueryPath
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("no database URL configured; set NESTQL_DATABASE_URL or run `nestql init`")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			adapter, err := database.New(database.Config{
				Provider: cfg.Provider,
				URL:      cfg.DatabaseURL,
			})
			if err != nil {
				return err
			}
			if err := adapter.Connect(ctx); err != nil {
				return err
			}
			defer adapter.Disconnect(ctx)

			eng := engine.New(
				driver.New(driver.PoolConnector{Pool: adapter.Pool()}, adapter.Dialect()),
				engine.WithBatchSize(cfg.BatchSize),
			)

			runOnce := func() error {
				return runQuery(ctx, eng, queryPath, filterExpr)
			}

			if !watchMode {
				return runOnce()
			}

			w, err := watch.New(queryPath, runOnce)
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			ui.PrintInfo("watching %s, press Ctrl-C to stop", queryPath)
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "path to the query document")
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "extra filter expression, e.g. 'status = \"published\"'")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-run when the query document changes")

	return cmd
}

func runQuery(ctx context.Context, eng *engine.Engine, queryPath, filterExpr string) error {
	g, err := queryfile.Load(config.AppFs, queryPath)
	if err != nil {
		return err
	}
	if filterExpr != "" {
		extra, err := filterdsl.Parse(filterExpr)
		if err != nil {
			return err
		}
		g = g.WithFilter(extra)
	}

	spinner, _ := ui.Spinner("Running query...")
	rows, err := eng.Query(ctx, g)
	if err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return err
	}
	defer rows.Close()

	var results []map[string]any
	for rows.Next() {
		results = append(results, rows.Row())
	}
	if err := rows.Err(); err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("%d rows", len(results)))
	}

	ui.PrintResultTable(outputColumns(g), results)
	return nil
}

// outputColumns keeps the table columns in the order the document requested
// them.
func outputColumns(g *graph.Graph) []string {
	cols := make([]string, 0, len(g.Fields))
	for _, f := range g.Fields {
		cols = append(cols, f.Name())
	}
	return cols
}
