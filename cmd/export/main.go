package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/quantex-lab/snapex/internal/checkpoint"
	"github.com/quantex-lab/snapex/internal/config"
	"github.com/quantex-lab/snapex/internal/export"
	"github.com/quantex-lab/snapex/internal/factor"
	"github.com/quantex-lab/snapex/internal/logger"
	"github.com/quantex-lab/snapex/internal/reader"
	"github.com/quantex-lab/snapex/internal/snapshot"
	"github.com/quantex-lab/snapex/internal/store"
	"github.com/quantex-lab/snapex/internal/types"
	"github.com/quantex-lab/snapex/internal/universe"
	"github.com/quantex-lab/snapex/pkg/pricing"
)

// pipeline bundles the wired components of one CLI invocation.
type pipeline struct {
	store       *store.Store
	coordinator *export.Coordinator
	logger      *logger.Logger
}

func (p *pipeline) close() {
	_ = p.store.Close()
	_ = p.logger.Sync()
}

func setupPipeline(configPath string) (*pipeline, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return nil, err
	}

	st, err := store.NewStore(cfg.DatabasePath, zapLogger)
	if err != nil {
		return nil, err
	}

	checkpoints, err := checkpoint.NewStore(st.DB(), zapLogger)
	if err != nil {
		st.Close()

		return nil, err
	}

	var fallback pricing.Provider

	if cfg.Fallback.Enabled {
		fallback, err = pricing.NewPolygonClient(cfg.Fallback.PolygonAPIKey, zapLogger)
		if err != nil {
			st.Close()

			return nil, err
		}
	}

	factors := factor.NewResolver(st, fallback, cfg.Fallback.PartialPolicy, zapLogger)
	barReader := reader.NewReader(st, st, factors, cfg.Units, zapLogger)
	writer := snapshot.NewWriter(cfg.SnapshotRoot, cfg.Market, zapLogger)

	var bar *progressbar.ProgressBar

	onProgress := func(current, total float64, message string) {
		if bar == nil {
			bar = progressbar.NewOptions(int(total),
				progressbar.OptionSetDescription(message),
				progressbar.OptionShowCount())
		}

		_ = bar.Set(int(current))
	}

	coordinator := export.NewCoordinator(st, barReader, factors, writer, checkpoints, cfg.Units, zapLogger, onProgress)

	return &pipeline{store: st, coordinator: coordinator, logger: zapLogger}, nil
}

func buildRequest(cmd *cli.Command) export.Request {
	return export.Request{
		SnapshotID:  cmd.String("snapshot-id"),
		Dataset:     types.DatasetType(cmd.String("dataset")),
		Start:       cmd.Timestamp("start"),
		End:         cmd.Timestamp("end"),
		Instruments: cmd.StringSlice("instruments"),
		Filter: universe.Filter{
			Exchanges:               cmd.StringSlice("exchanges"),
			ExcludeDelisted:         cmd.Bool("exclude-delisted"),
			ExcludeSuspended:        cmd.Bool("exclude-suspended"),
			ExcludeSpecialTreatment: cmd.Bool("exclude-st"),
		},
		WindowDays: int(cmd.Int("window-days")),
	}
}

func runExport(ctx context.Context, cmd *cli.Command, full bool) error {
	p, err := setupPipeline(cmd.String("config"))
	if err != nil {
		return err
	}
	defer p.close()

	req := buildRequest(cmd)

	var result export.Result

	if full {
		result, err = p.coordinator.ExportFull(ctx, req)
	} else {
		result, err = p.coordinator.ExportIncremental(ctx, req)
	}

	if err != nil {
		return err
	}

	p.logger.Info("export finished",
		zap.String("run_id", result.RunID),
		zap.String("snapshot_id", result.SnapshotID),
		zap.String("dataset", string(result.Dataset)),
		zap.Int("rows", result.Rows),
		zap.Int("instruments", result.Instruments))

	fmt.Printf("exported %d rows for %d instruments into snapshot %s (%s)\n",
		result.Rows, result.Instruments, result.SnapshotID, result.Dataset)

	return nil
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the export configuration YAML",
			Value:   "config/export.yaml",
		},
		&cli.StringFlag{
			Name:     "snapshot-id",
			Aliases:  []string{"n"},
			Usage:    "Snapshot identifier to write into",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "dataset",
			Aliases:  []string{"d"},
			Usage:    fmt.Sprintf("Dataset type (one of %v)", types.AllDatasetTypes),
			Required: true,
		},
		&cli.TimestampFlag{
			Name:    "end",
			Aliases: []string{"e"},
			Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
			Value:   time.Now(),
			Config: cli.TimestampConfig{
				Layouts: []string{"2006-01-02"},
			},
		},
		&cli.StringSliceFlag{
			Name:  "instruments",
			Usage: "Explicit instrument list; empty means the filtered universe",
		},
		&cli.StringSliceFlag{
			Name:  "exchanges",
			Usage: "Exchange allow-list for universe resolution",
		},
		&cli.BoolFlag{Name: "exclude-delisted", Usage: "Exclude delisted instruments", Value: true},
		&cli.BoolFlag{Name: "exclude-suspended", Usage: "Exclude suspended instruments"},
		&cli.BoolFlag{Name: "exclude-st", Usage: "Exclude special-treatment instruments"},
		&cli.IntFlag{Name: "window-days", Usage: "Date-window size for batched intraday exports", Value: int64(reader.DefaultWindowDays)},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "snapex",
		Usage: "Export adjusted market-data snapshots",
		Commands: []*cli.Command{
			{
				Name:  "full",
				Usage: "Run a full export over an explicit date range",
				Flags: append(commonFlags(),
					&cli.TimestampFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "Start date in `YYYY-MM-DD` format",
						Required: true,
						Config: cli.TimestampConfig{
							Layouts: []string{"2006-01-02"},
						},
					},
				),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runExport(ctx, cmd, true)
				},
			},
			{
				Name:  "incremental",
				Usage: "Run an incremental export from the last checkpoint",
				Flags: commonFlags(),
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runExport(ctx, cmd, false)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
