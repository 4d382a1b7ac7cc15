package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"budgeter/internal/store"
)

func run(t *testing.T, args ...string) {
	t.Helper()
	if err := execute(context.Background(), args); err != nil {
		t.Fatalf("budgeter %v: %v", args, err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"BUDGETER_DATA_DIR", "DATA_BACKEND", "SQLITE_DB_PATH", "LOG_LEVEL", "BUDGETER_RESET_CORRUPT"} {
		t.Setenv(key, "")
	}
}

func TestCommands_JSONRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	run(t, "--data-dir", dir, "balance", "set", "100")
	run(t, "--data-dir", dir, "income", "50", "--category", "Personal")
	run(t, "--data-dir", dir, "expense", "30", "--category", "Food", "--note", "groceries")
	run(t, "--data-dir", dir, "goal", "add", "Bike", "200", "--current", "50")
	run(t, "--data-dir", dir, "bill", "add", "Rent", "400")
	run(t, "--data-dir", dir, "summary")

	var balance struct {
		Balance float64 `json:"balance"`
	}
	readJSON(t, filepath.Join(dir, "balance.json"), &balance)
	if balance.Balance != 120 {
		t.Errorf("expected balance 120, got %v", balance.Balance)
	}

	var txs []map[string]any
	readJSON(t, filepath.Join(dir, "transactions.json"), &txs)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[1]["category"] != "Food" || txs[1]["note"] != "groceries" {
		t.Errorf("unexpected expense record: %v", txs[1])
	}

	var mainGoal struct {
		Name string `json:"name"`
	}
	readJSON(t, filepath.Join(dir, "main_goal.json"), &mainGoal)
	if mainGoal.Name != "Bike" {
		t.Errorf("expected first goal to become main, got %q", mainGoal.Name)
	}
}

func TestCommands_RejectBadAmount(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_BACKEND", "memory")
	if err := execute(context.Background(), []string{"expense", "abc"}); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestCommands_FailureClosesSession(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	err := execute(context.Background(), []string{"--data-dir", dir, "--backend", "sqlite", "goal", "rm", "Missing"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if session != nil {
		t.Fatal("session should be closed and cleared after a failed command")
	}

	// The database must be usable again by the next command.
	run(t, "--data-dir", dir, "--backend", "sqlite", "balance", "set", "10")
	if session != nil {
		t.Fatal("session should be cleared after a successful command")
	}
}

func TestCommands_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	clearEnv(t)
	first := t.TempDir()
	second := t.TempDir()
	t.Setenv("BUDGETER_DATA_DIR", second)

	run(t, "--data-dir", first, "expense", "5", "--category", "Food", "--note", "lunch")
	run(t, "expense", "3")

	if _, err := os.Stat(filepath.Join(first, "transactions.json")); err != nil {
		t.Fatalf("first run should write to --data-dir: %v", err)
	}

	var txs []map[string]any
	readJSON(t, filepath.Join(second, "transactions.json"), &txs)
	if len(txs) != 1 {
		t.Fatalf("second run should use BUDGETER_DATA_DIR, got %d transactions", len(txs))
	}
	if _, ok := txs[0]["note"]; ok {
		t.Errorf("note leaked from the previous run: %v", txs[0])
	}
	if txs[0]["category"] != "Other" {
		t.Errorf("expected default category Other, got %v", txs[0]["category"])
	}
}

func TestResetFlags(t *testing.T) {
	if err := expenseCmd.Flags().Set("note", "lunch"); err != nil {
		t.Fatal(err)
	}
	resetFlags(rootCmd)
	if txNote != "" {
		t.Errorf("txNote = %q after reset", txNote)
	}
	if f := expenseCmd.Flags().Lookup("note"); f.Changed {
		t.Error("note flag still marked as changed")
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestAmountParsing(t *testing.T) {
	if m, err := positiveAmount("12,50"); err != nil || m.Cents != 1250 {
		t.Errorf("positiveAmount(12,50) = %v, %v", m, err)
	}
	if _, err := positiveAmount("0"); err == nil {
		t.Error("positiveAmount(0) should fail")
	}
	if m, err := nonNegativeAmount("0"); err != nil || !m.IsZero() {
		t.Errorf("nonNegativeAmount(0) = %v, %v", m, err)
	}
	if m, err := signedAmount("-20.5"); err != nil || m.Cents != -2050 {
		t.Errorf("signedAmount(-20.5) = %v, %v", m, err)
	}
}
