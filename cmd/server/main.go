package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thalesfercaetano/Pets-API/internal/config"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/container"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	code := 0
	if err := run(cfg, log, quit); err != nil {
		log.Error("server exited with error", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	os.Exit(code)
}

// run serves until a signal arrives on quit or the server fails, then shuts
// down gracefully.
func run(cfg *config.Config, log *zap.Logger, quit <-chan os.Signal) error {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize dependency injection container
	app, err := container.NewContainer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error("error closing application", zap.Error(err))
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Server.Start()
	}()

	log.Info("server started",
		zap.String("addr", app.Server.Addr()),
		zap.String("env", cfg.Server.Env),
	)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	case runErr = <-serverErr:
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server exited properly")
	return runErr
}
