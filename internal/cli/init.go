// Package cli provides the initialization shared by budgeter commands:
// environment, logging, configuration and opening the ledger.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"budgeter/internal/backend"
	"budgeter/internal/config"
	"budgeter/internal/core"
	"budgeter/internal/log"
	"budgeter/internal/services"
	"budgeter/internal/store"
)

// LoadEnvFile loads the .env file for local use.
// Errors are ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger at the given level and sets
// it as the default. debug forces the debug level.
func SetupLogger(level string, debug bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if debug {
		lvl = slog.LevelDebug
	}
	cfg := log.DefaultConfig()
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger, nil
}

// Overrides carries command-line values that take precedence over the
// environment. Empty fields are ignored.
type Overrides struct {
	DataDir      string
	Backend      string
	ResetCorrupt bool
}

// LoadAndValidateConfig loads configuration, applies overrides and
// validates the result.
func LoadAndValidateConfig(o Overrides) (*config.Config, error) {
	cfg := config.Load()
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
		if os.Getenv("SQLITE_DB_PATH") == "" {
			cfg.SQLiteDBPath = config.DefaultSQLitePath(o.DataDir)
		}
	}
	if o.Backend != "" {
		cfg.DataBackend = o.Backend
	}
	if o.ResetCorrupt {
		cfg.ResetCorrupt = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Session is an opened ledger together with the backend it lives on.
type Session struct {
	Ledger *services.Ledger
	Config *config.Config

	backend *backend.BackendResult
	logger  *log.Logger
}

// Open creates the configured backend and loads the ledger from it.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Session, error) {
	logger = log.OrDefault(logger, log.ComponentCLI)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	ledger, err := services.Open(ctx, res.Backend, services.Options{
		ResetCorrupt: cfg.ResetCorrupt,
		Logger:       logger,
	})
	if err != nil {
		if cerr := res.Close(); cerr != nil {
			logger.Warn("Failed to close backend", log.FieldError, cerr)
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	return &Session{Ledger: ledger, Config: cfg, backend: res, logger: logger}, nil
}

// Close releases the backend.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if err := s.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close backend: %w", err))
	}
	return errors.Join(errs...)
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
// Call stop to release the signal handler.
func ShutdownContext(parent context.Context, logger *log.Logger) (ctx context.Context, stop func()) {
	logger = log.OrDefault(logger, log.ComponentCLI)
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String(), log.FieldOperation, log.OpShutdown)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// ErrorType maps an error to the category used in log fields.
func ErrorType(err error) string {
	var verr *core.ValidationError
	switch {
	case errors.Is(err, store.ErrCorrupt):
		return log.ErrorTypeCorrupt
	case errors.Is(err, store.ErrPersistence):
		return log.ErrorTypePersistence
	case errors.Is(err, store.ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.As(err, &verr):
		return log.ErrorTypeValidation
	}
	return log.ErrorTypeInternal
}
