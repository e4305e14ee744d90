package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/icodeforyou/rapsounding-go/config"
	"github.com/icodeforyou/rapsounding-go/database"
	"github.com/icodeforyou/rapsounding-go/hours"
	"github.com/icodeforyou/rapsounding-go/logging"
	"github.com/icodeforyou/rapsounding-go/metrics"
	"github.com/icodeforyou/rapsounding-go/notify"
	"github.com/icodeforyou/rapsounding-go/skewt"
	"github.com/icodeforyou/rapsounding-go/sounding"
	"github.com/icodeforyou/rapsounding-go/task"
	"github.com/icodeforyou/rapsounding-go/thredds"
	"github.com/icodeforyou/rapsounding-go/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	once := flag.Bool("once", false, "render the latest run once and exit")
	force := flag.Bool("force", false, "with -once, render even if the run is already stored")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := hours.SetGuiTimezone(cnfg.Gui.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set GUI timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("rapsounding is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	m := metrics.New()
	width, height := cnfg.Output.GetSize()
	pipeline := sounding.NewPipeline(
		pipelineConfig(cnfg),
		thredds.NewClient(cnfg.Model.GetTimeout(), m, logger.With("module", "thredds")),
		db,
		skewt.NewRenderer(width, height, cnfg.Output.GetDpi()),
		m,
		logger.With("module", "sounding"))

	if cnfg.Mqtt.Enabled() {
		mq := notify.NewMqtt(cnfg.Mqtt)
		if err := mq.Connect(); err != nil {
			logger.Warn("mqtt connection failed, not publishing", slog.Any("error", err))
		} else {
			defer mq.Disconnect()
			pipeline.SetNotifier(mq)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-ctx.Done():
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	if *once {
		res, err := pipeline.Run(ctx, *force)
		if err != nil {
			exitWithError(logger, err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			exitWithError(logger, err)
		}
		return
	}

	latest := database.NewLatestRun(db)
	if err := latest.Reload(ctx); err != nil {
		panic(fmt.Sprintf("failed to load latest run: %v", err))
	}

	tasks := task.NewTasks(db, pipeline, latest, cnfg)
	server := www.StartServer(db, latest, tasks, cnfg, Version)
	pipeline.OnSounding(server.BroadcastSounding)

	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
		go tasks.SoundingTask()
	}

	server.Run(ctx)
}

func pipelineConfig(cnfg *config.AppConfig) sounding.PipelineConfig {
	return sounding.PipelineConfig{
		CatalogURL:  cnfg.Model.GetCatalogUrl(),
		Latitude:    cnfg.Target.GetLatitude(),
		Longitude:   cnfg.Target.GetLongitude(),
		BboxPadding: cnfg.Model.GetBboxPadding(),
		OutputDir:   cnfg.Output.GetDir(),
		WorkDir:     cnfg.Model.GetWorkDir(),
		Hours: sounding.HourPolicy{
			Default:          cnfg.Model.GetForecastHours(),
			Extended:         cnfg.Model.GetExtendedForecastHours(),
			ExtendedRunHours: cnfg.Model.GetExtendedRunHours(),
		},
	}
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
