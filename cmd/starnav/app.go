package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"starnav.teamgannon.org/internal/app"
	"starnav.teamgannon.org/internal/appconf"
	"starnav.teamgannon.org/internal/clock"
	"starnav.teamgannon.org/internal/logging"
	"starnav.teamgannon.org/internal/restapi"
	"starnav.teamgannon.org/internal/starmap"
	"starnav.teamgannon.org/internal/webui"
)

const shutdownTimeout = 30 * time.Second

// ParseAPIKeys splits a comma-separated string of API keys and trims whitespace from each key.
// Returns an empty slice if the input is empty.
func ParseAPIKeys(apiKeysFlag string) []string {
	if apiKeysFlag == "" {
		return []string{}
	}

	keys := strings.Split(apiKeysFlag, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}

// BuildApplication loads the star catalog and computes the transit network.
// Returns an error if the catalog cannot be loaded or the bands are invalid.
func BuildApplication(cfg appconf.Config, smCfg starmap.Config) (*app.Application, error) {
	level := slog.LevelInfo
	if cfg.Env == appconf.Development {
		level = slog.LevelDebug
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)

	manager, err := starmap.InitManager(context.Background(), smCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize star map: %w", err)
	}

	coreApp := &app.Application{
		Config:        cfg,
		StarmapConfig: smCfg,
		Logger:        logger,
		Manager:       manager,
		Clock:         clock.RealClock{},
	}

	return coreApp, nil
}

// CreateServer creates the HTTP server with the REST API and web UI routes
// behind the request id, logging and security middlewares.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)

	webUI := &webui.WebUI{
		Application: coreApp,
	}

	mux := http.NewServeMux()

	api.SetRoutes(mux)
	webUI.SetWebUIRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.WrapHandler(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}

	return srv, api
}

// Run serves until ctx is cancelled, then shuts the server down gracefully
// and stops the API and star map background work.
func Run(ctx context.Context, srv *http.Server, api *restapi.RestAPI, manager *starmap.Manager, logger *slog.Logger) error {
	logger.Info("starting server", "addr", srv.Addr)

	serverErrors := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if api != nil {
		api.Shutdown()
	}
	if manager != nil {
		manager.Shutdown()
	}

	logger.Info("server exited")
	return nil
}
