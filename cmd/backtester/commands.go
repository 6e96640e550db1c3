package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"portfoliolab/internal/api"
	"portfoliolab/internal/config"
	"portfoliolab/internal/engine"
	"portfoliolab/internal/repository"
	"portfoliolab/types"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "run the backtest described in the config file and print the result as JSON",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "do not draw a progress bar",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "write the result to this file instead of stdout",
		},
	},
	Action: runBacktest,
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "serve backtests over HTTP",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "listen address, overrides server.addr",
		},
	},
	Action: serve,
}

var cacheCommand = &cli.Command{
	Name:      "cache",
	Usage:     "copy daily prices from the postgres provider into a local sqlite file",
	ArgsUsage: "TICKER [TICKER...]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "sqlite",
			Usage:    "destination sqlite file",
			Required: true,
		},
		&cli.TimestampFlag{
			Name:   "start",
			Layout: time.DateOnly,
			Usage:  "first date to copy",
		},
		&cli.TimestampFlag{
			Name:   "end",
			Layout: time.DateOnly,
			Usage:  "last date to copy",
		},
	},
	Action: cachePrices,
}

// setup loads the config file and the logger every command needs.
func setup() (*config.File, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

// openProvider returns the configured price provider and its closer.
func openProvider(ctx context.Context, cfg *config.File) (engine.PriceProvider, func(), error) {
	switch cfg.Provider.Kind {
	case config.ProviderSQLite:
		db, err := repository.OpenSQLite(cfg.Provider.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		db, err := repository.NewDatabase(ctx, cfg.Provider.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
}

func runBacktest(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	req, err := cfg.Backtest.Request()
	if err != nil {
		return fmt.Errorf("backtest config: %w", err)
	}
	provider, closeProvider, err := openProvider(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	var onProgress engine.ProgressFunc
	if !c.Bool("quiet") {
		bar := initProgressBar()
		onProgress = func(pct int) { _ = bar.Set(pct) }
		defer func() { _ = bar.Finish() }()
	}

	result, err := engine.NewEngine(provider, log).Run(c.Context, req, onProgress)
	if result == nil {
		return err
	}
	if err != nil {
		log.Warn("writing partial result", zap.Error(err))
	}

	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		return encErr
	}
	return err
}

func initProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	provider, closeProvider, err := openProvider(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	addr := cfg.Server.Addr
	if a := c.String("addr"); a != "" {
		addr = a
	}
	srv := api.NewServer(addr, engine.NewEngine(provider, log), log)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		return err
	case <-c.Context.Done():
		log.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	}
}

func cachePrices(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one ticker is required")
	}
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if cfg.Provider.Kind != config.ProviderPostgres {
		return fmt.Errorf("cache reads from postgres, provider is %q", cfg.Provider.Kind)
	}

	src, err := repository.NewDatabase(c.Context, cfg.Provider.DSN)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := repository.OpenSQLite(c.String("sqlite"))
	if err != nil {
		return err
	}
	defer dst.Close()

	var start, end time.Time
	if ts := c.Timestamp("start"); ts != nil {
		start = *ts
	}
	if ts := c.Timestamp("end"); ts != nil {
		end = *ts
	}
	for _, ticker := range c.Args().Slice() {
		asset := types.AssetID(strings.ToUpper(ticker))
		series, err := src.GetHistoricalPrices(c.Context, asset, start, end)
		if err != nil {
			return fmt.Errorf("%s: %w", asset, err)
		}
		if err := dst.SavePrices(c.Context, series); err != nil {
			return fmt.Errorf("%s: %w", asset, err)
		}
		log.Info("cached prices", zap.String("asset", string(asset)), zap.Int("points", len(series.Points)))
	}
	return nil
}
