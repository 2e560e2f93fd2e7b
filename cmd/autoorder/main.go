package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lpiteam/autoorder/internal/config"
	"github.com/lpiteam/autoorder/internal/domain"
	"github.com/lpiteam/autoorder/internal/export"
	"github.com/lpiteam/autoorder/internal/ingest"
	"github.com/lpiteam/autoorder/internal/service"
	"github.com/lpiteam/autoorder/internal/settings"
	"github.com/lpiteam/autoorder/internal/storage"
	"github.com/lpiteam/autoorder/pkg/logger"
)

const dateLayout = "2006-01-02"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "autoorder",
		Usage: "Compute replenishment recommendations from sales-and-stock snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.SetLevel(c.String("log-level"))
			return nil
		},
		Commands: []*cli.Command{
			calcCommand(),
			fetchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func calcCommand() *cli.Command {
	return &cli.Command{
		Name:  "calc",
		Usage: "Run an order calculation and export the result workbooks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "snapshot",
				Usage: "Snapshot xlsx path (default: newest match in the data dir)",
			},
			&cli.StringFlag{
				Name:  "settings",
				Usage: "Supplier settings workbook to load before calculating",
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "Analysis period start (YYYY-MM-DD, default 30 days ago)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Analysis period end (YYYY-MM-DD, default today)",
			},
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for the exported workbooks (default: configured output dir)",
			},
			&cli.IntFlag{
				Name:  "urgent-ratio",
				Usage: "Top share of urgent items to log, percent",
			},
		},
		Action: runCalc,
	}
}

func runCalc(c *cli.Context) error {
	cfg := config.Load()

	snapshotPath := c.String("snapshot")
	if snapshotPath == "" {
		found, err := ingest.FindLatestSnapshot(cfg.App.DataDir, cfg.App.SnapshotPattern)
		if err != nil {
			return err
		}
		snapshotPath = found
		logger.Log.Info().Str("snapshot", snapshotPath).Msg("auto-discovered latest snapshot")
	}

	period, err := resolvePeriod(c)
	if err != nil {
		return err
	}

	store := settings.NewStore()
	persist := settings.NewFilePersistence(cfg.App.SettingsPath)
	svc := service.NewOrderService(store, nil, persist)
	if err := svc.LoadPersistedSettings(); err != nil {
		logger.Log.Warn().Err(err).Msg("could not restore persisted settings, starting with defaults")
	}

	if settingsPath := c.String("settings"); settingsPath != "" {
		parsed, err := ingest.ReadSettingsFile(settingsPath)
		if err != nil {
			return err
		}
		svc.ApplySettingsWorkbook(parsed)
		logger.Log.Info().Bool("master_loaded", parsed.Master != nil).
			Int("item_overrides", len(parsed.Overrides)).Msg("settings workbook applied")
	}

	urgentRatio := cfg.App.UrgentRatioPct
	if c.IsSet("urgent-ratio") {
		urgentRatio = c.Int("urgent-ratio")
	}

	run, err := svc.RunFromFile(c.Context, snapshotPath, period, service.RunOptions{
		ExcludeKeywords: cfg.App.ExcludeKeywords,
		UrgentRatioPct:  urgentRatio,
	})
	if err != nil {
		return err
	}

	printSummary(run)

	outputDir := c.String("output-dir")
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}

	now := time.Now()
	orderPath := filepath.Join(outputDir, export.OrderListFilename(now))
	overstockPath := filepath.Join(outputDir, export.OverstockFilename(now))

	var g errgroup.Group
	g.Go(func() error { return export.WriteOrderList(orderPath, run.OrderNeeded) })
	g.Go(func() error { return export.WriteOverstock(overstockPath, run.Overstock) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("workbook export failed: %w", err)
	}

	logger.Log.Info().Str("order_list", orderPath).Str("overstock", overstockPath).
		Msg("result workbooks written")
	return nil
}

func resolvePeriod(c *cli.Context) (domain.Period, error) {
	now := time.Now()
	period := domain.Period{Start: now.AddDate(0, 0, -29), End: now}

	if raw := c.String("start"); raw != "" {
		start, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.Period{}, fmt.Errorf("invalid --start %q, expected YYYY-MM-DD", raw)
		}
		period.Start = start
	}
	if raw := c.String("end"); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			return domain.Period{}, fmt.Errorf("invalid --end %q, expected YYYY-MM-DD", raw)
		}
		period.End = end
	}

	return period, nil
}

func printSummary(run *service.RunResult) {
	logger.Log.Info().
		Int("period_days", run.PeriodDays).
		Int("total_rows", run.TotalRows).
		Int("excluded_by_keyword", run.ExcludedByKeyword).
		Int("excluded_by_min_sales", run.ExcludedByMinSales).
		Msg("input rows")

	logger.Log.Info().
		Int("order_items", run.Summary.Order.ItemCount).
		Int64("order_qty", run.Summary.Order.TotalQty).
		Str("order_cost", run.Summary.Order.TotalCost.String()).
		Int("overstock_items", run.Summary.Overstock.ItemCount).
		Int64("overstock_qty", run.Summary.Overstock.ExcessQty).
		Str("overstock_cost", run.Summary.Overstock.ExcessCost.String()).
		Msg("run summary")

	for i, r := range run.Urgent {
		logger.Log.Info().
			Int("rank", i+1).
			Str("code", r.Code).
			Str("name", r.DisplayName()).
			Int64("recommended_qty", r.RecommendedQty).
			Int64("stock", r.Stock).
			Msg("urgent order")
	}
}

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Download the newest snapshot from object storage into the data dir",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "prefix",
				Usage:   "Object key prefix to search",
				EnvVars: []string{"STORAGE_PREFIX"},
			},
			&cli.StringFlag{
				Name:  "dest-dir",
				Usage: "Destination directory (default: configured data dir)",
			},
		},
		Action: runFetch,
	}
}

func runFetch(c *cli.Context) error {
	cfg := config.Load()

	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}

	prefix := c.String("prefix")
	if prefix == "" {
		prefix = cfg.Storage.Prefix
	}
	destDir := c.String("dest-dir")
	if destDir == "" {
		destDir = cfg.App.DataDir
	}

	path, err := storage.FetchLatest(c.Context, client, prefix, destDir)
	if err != nil {
		return err
	}

	logger.Log.Info().Str("path", path).Msg("snapshot downloaded")
	return nil
}
