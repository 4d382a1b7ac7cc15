// Package storage keeps the record documents in a single SQLite database,
// one row per kind.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"budgeter/internal/log"
	"budgeter/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteBackend struct {
	db     *sql.DB
	path   string
	logger *log.Logger
}

// NewSQLiteBackend opens (creating if needed) the database at dbPath and
// applies migrations.
func NewSQLiteBackend(dbPath string, logger *log.Logger) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; the app is single-user anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	b := &SQLiteBackend{
		db:     db,
		path:   dbPath,
		logger: log.OrDefault(logger, log.ComponentStorage),
	}
	b.logger.Debug("SQLite backend ready", log.FieldPath, dbPath, log.FieldOperation, log.OpMigrate)
	return b, nil
}

func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Read implements store.Backend
func (b *SQLiteBackend) Read(ctx context.Context, kind store.Kind) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE kind = ?`, string(kind)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", kind, err)
	}
	return []byte(body), nil
}

// Write implements store.Backend. The upsert runs in its own transaction.
func (b *SQLiteBackend) Write(ctx context.Context, kind store.Kind, data []byte) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (kind, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(kind) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		string(kind), string(data))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", kind, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", kind, err)
	}
	b.logger.DebugContext(ctx, "Document written", log.FieldKind, string(kind), log.FieldBytes, len(data))
	return nil
}
