package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trendboard/internal/config"
	"trendboard/internal/handler"
	"trendboard/internal/server"
	"trendboard/internal/service"
	"trendboard/pkg/logger"
	"trendboard/pkg/trends"
)

type Application struct {
	configPath string
	envFile    string
	debug      bool
}

func main() {
	app := &Application{}

	flag.StringVar(&app.configPath, "config", "config/trendboard.yaml", "Configuration file path")
	flag.StringVar(&app.envFile, "env-file", ".env", "Optional .env file with credentials")
	flag.BoolVar(&app.debug, "debug", false, "Enable debug mode")
	flag.Parse()

	if err := app.Run(); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func (app *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.LoadDotEnv(app.envFile); err != nil {
		return err
	}
	cfg, err := config.NewManager().Load(app.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if app.debug {
		cfg.Logger.Level = "debug"
	}
	logger.SetLogger(logger.New(cfg.Logger))
	appLog := logger.GetLogger().WithField("component", "main")

	secureLog := logger.GetSecurityLogger()
	secureLog.SafeInfo("Configuration loaded", map[string]interface{}{
		"config_path":   app.configPath,
		"address":       cfg.Address(),
		"endpoint":      cfg.Trends.Endpoint,
		"client_id":     cfg.Trends.ClientID,
		"client_secret": cfg.Trends.ClientSecret,
		"timeout":       cfg.Trends.Timeout.String(),
	})

	table, err := cfg.CountryTable()
	if err != nil {
		return err
	}
	client, err := trends.NewClient(cfg.TrendsClient())
	if err != nil {
		return fmt.Errorf("failed to create trends client: %w", err)
	}

	dashboard := service.NewDashboard(client, table)
	fiberApp := server.Create(cfg.Server)
	handler.NewController(dashboard, server.NewSessionStore(cfg.Session)).Register(fiberApp)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		appLog.WithField("address", cfg.Address()).Info("Server started")
		listenErr <- fiberApp.Listen(cfg.Address())
	}()

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig.String()).Info("Shutdown signal received")
		cancel()
	case err := <-listenErr:
		if err != nil {
			secureLog.SafeError("Server stopped unexpectedly", err, map[string]interface{}{
				"address": cfg.Address(),
			})
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	}

	<-ctx.Done()
	appLog.Info("Shutting down gracefully...")
	if err := fiberApp.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		secureLog.SafeWarn("Server did not shut down cleanly", map[string]interface{}{
			"error":   err.Error(),
			"timeout": cfg.Server.ShutdownTimeout.String(),
		})
		return err
	}
	appLog.Info("Server stopped")
	return nil
}
