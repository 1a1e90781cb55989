package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/plotdeck/plotdeck/api"
	"github.com/plotdeck/plotdeck/config"
	"github.com/plotdeck/plotdeck/interpreter"
	"github.com/plotdeck/plotdeck/llm"
	"github.com/plotdeck/plotdeck/usage"
)

func run(configPath, listen, logLevel string) error {
	logger := configureLogging(logLevel)

	// Load configuration
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Connect to NATS when a usage mirror is configured
	var nc *nats.Conn
	ledgerOpts := []usage.LedgerOption{
		usage.WithMaxRecords(cfg.Usage.MaxRecords),
		usage.WithLogger(logger),
	}
	if cfg.NATS.URL != "" {
		var err error
		nc, err = nats.Connect(cfg.NATS.URL,
			nats.Name(appName),
			nats.MaxReconnects(-1))
		if err != nil {
			// Usage mirroring is optional, the ledger still records locally
			logger.Warn("NATS connection failed, usage mirroring disabled",
				"url", cfg.NATS.URL,
				"error", err)
		} else {
			defer nc.Close()
			pubOpts := []usage.NATSPublisherOption{usage.WithPublisherLogger(logger)}
			if cfg.NATS.Subject != "" {
				pubOpts = append(pubOpts, usage.WithSubject(cfg.NATS.Subject))
			}
			ledgerOpts = append(ledgerOpts, usage.WithPublisher(usage.NewNATSPublisher(nc, pubOpts...)))
			logger.Info("Usage mirroring enabled", "url", cfg.NATS.URL)
		}
	}
	ledger := usage.NewLedger(ledgerOpts...)

	// Model gateway
	client := llm.NewClient(endpointFromConfig(cfg),
		llm.WithRetryConfig(retryFromConfig(cfg)),
		llm.WithHTTPClient(&http.Client{Timeout: cfg.Model.Timeout}),
		llm.WithLogger(logger),
		llm.WithRecorder(ledger))

	if err := client.CheckCredentials(); err != nil {
		// Startup proceeds so /healthz and /api/usage stay available.
		// Commands report the missing credential per request.
		logger.Warn("Model gateway credentials missing", "error", err)
	}

	interp := interpreter.New(client, interpreter.WithLogger(logger))

	server := api.NewServer(cfg.Server.Listen, api.Dependencies{
		Logger:      logger,
		Interpreter: interp,
		Ledger:      ledger,
		RecentLimit: cfg.Usage.RecentLimit,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Hot-reload the model endpoint on config file changes
	if configPath != "" {
		watcher, err := config.NewWatcher(config.WatcherConfig{
			Path:   configPath,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("create config watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start config watcher: %w", err)
		}
		defer func() { _ = watcher.Stop() }()

		go func() {
			for updated := range watcher.Updates() {
				client.SetEndpoint(endpointFromConfig(updated))
				logger.Info("Model endpoint updated",
					"provider", updated.Model.Provider,
					"model", updated.Model.Name)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Plotdeck ready",
			"version", Version,
			"listen", cfg.Server.Listen,
			"provider", cfg.Model.Provider,
			"model", cfg.Model.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

func endpointFromConfig(cfg *config.Config) llm.EndpointConfig {
	temp := cfg.Model.Temperature
	return llm.EndpointConfig{
		Provider:    cfg.Model.Provider,
		Model:       cfg.Model.Name,
		URL:         cfg.Model.Endpoint,
		Temperature: &temp,
		MaxTokens:   cfg.Model.MaxTokens,
	}
}

func retryFromConfig(cfg *config.Config) llm.RetryConfig {
	rc := llm.DefaultRetryConfig()
	if cfg.Retry.MaxAttempts > 0 {
		rc.MaxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.BackoffBase > 0 {
		rc.BackoffBase = cfg.Retry.BackoffBase
	}
	return rc
}
