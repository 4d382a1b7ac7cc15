package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"budgeter/internal/core"
	"budgeter/internal/log"
	"budgeter/internal/store"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BUDGETER_DATA_DIR", "DATA_BACKEND", "SQLITE_DB_PATH", "LOG_LEVEL", "BUDGETER_RESET_CORRUPT"} {
		t.Setenv(key, "")
	}
}

func TestSetupLogger(t *testing.T) {
	if _, err := SetupLogger("info", false); err != nil {
		t.Fatalf("SetupLogger(info) failed: %v", err)
	}
	if _, err := SetupLogger("loud", false); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoadAndValidateConfig_Overrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadAndValidateConfig(Overrides{DataDir: dir, Backend: "sqlite", ResetCorrupt: true})
	if err != nil {
		t.Fatalf("LoadAndValidateConfig failed: %v", err)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.DataBackend != "sqlite" {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if want := filepath.Join(dir, "budgeter.db"); cfg.SQLiteDBPath != want {
		t.Errorf("SQLiteDBPath = %q, want %q", cfg.SQLiteDBPath, want)
	}
	if !cfg.ResetCorrupt {
		t.Error("ResetCorrupt override not applied")
	}

	if _, err := LoadAndValidateConfig(Overrides{Backend: "sheets"}); err == nil {
		t.Error("expected validation error for unknown backend")
	}
}

func TestOpen_JSONBackendPersists(t *testing.T) {
	clearEnv(t)
	ctx := context.Background()
	cfg, err := LoadAndValidateConfig(Overrides{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("LoadAndValidateConfig failed: %v", err)
	}

	s, err := Open(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Ledger.SetBalance(ctx, core.Cents(9900)); err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = Open(ctx, cfg, log.Discard())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if got := s.Ledger.Balance(); got.Cents != 9900 {
		t.Errorf("expected persisted balance 99.00, got %s", got)
	}
}

func TestShutdownContext_Stop(t *testing.T) {
	ctx, stop := ShutdownContext(context.Background(), log.Discard())
	stop()
	select {
	case <-ctx.Done():
	default:
		t.Error("context should be cancelled after stop")
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &core.ValidationError{Field: "amount", Err: core.ErrInvalidAmount}, log.ErrorTypeValidation},
		{"not found", &store.NotFoundError{Kind: store.KindGoals, Key: "Bike"}, log.ErrorTypeNotFound},
		{"corrupt", &store.CorruptStoreError{Kind: store.KindBills, Err: errors.New("bad json")}, log.ErrorTypeCorrupt},
		{"persistence wrapped", fmt.Errorf("save: %w", &store.PersistenceError{Kind: store.KindBalance, Err: errors.New("disk full")}), log.ErrorTypePersistence},
		{"corrupt record", &store.CorruptStoreError{Kind: store.KindGoals, Err: fmt.Errorf("record 0: %w", &core.ValidationError{Field: "name", Err: core.ErrEmptyName})}, log.ErrorTypeCorrupt},
		{"other", errors.New("boom"), log.ErrorTypeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorType(tt.err); got != tt.want {
				t.Errorf("ErrorType() = %q, want %q", got, tt.want)
			}
		})
	}
}
