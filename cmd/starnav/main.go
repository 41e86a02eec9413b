package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starnav.teamgannon.org/internal/appconf"
	"starnav.teamgannon.org/internal/starmap"
)

func main() {
	var cfg appconf.Config
	var smCfg starmap.Config
	var apiKeysFlag string
	var envFlag string
	var configPath string
	var reloadSeconds int

	flag.StringVar(&configPath, "config", "", "Path to a JSON config file; overrides the other flags")
	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&envFlag, "env", "development", "Environment (development|test|production)")
	flag.StringVar(&apiKeysFlag, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key for rate limiting")
	flag.IntVar(&cfg.DefaultNumPaths, "default-num-paths", 3, "Routes returned by a route search that does not ask for a number")
	flag.StringVar(&smCfg.CatalogPath, "catalog", "./stars.json", "Path to the JSON star catalog")
	flag.IntVar(&reloadSeconds, "reload-interval", 0, "Seconds between checks of the catalog file for changes; 0 disables reloading")
	flag.IntVar(&smCfg.ParallelThreshold, "parallel-threshold", 0, "Star count from which transits are calculated on several workers")
	flag.Parse()

	if configPath != "" {
		jsonCfg, err := appconf.LoadFromFile(configPath)
		if err != nil {
			logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
			logger.Error("failed to load config file", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = jsonCfg.ToAppConfig()
		smCfg = jsonCfg.ToStarmapConfig()
	} else {
		cfg.Verbose = true
		smCfg.Verbose = true
		smCfg.ReloadInterval = time.Duration(reloadSeconds) * time.Second
		cfg.ApiKeys = ParseAPIKeys(apiKeysFlag)
		cfg.Env = appconf.EnvFlagToEnvironment(envFlag)
	}

	coreApp, err := BuildApplication(cfg, smCfg)
	if err != nil {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	srv, api := CreateServer(coreApp, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, srv, api, coreApp.Manager, coreApp.Logger); err != nil {
		coreApp.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
