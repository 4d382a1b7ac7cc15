package backend

import (
	"context"
	"fmt"

	"budgeter/internal/log"
	"budgeter/internal/storage"
	"budgeter/internal/store/filestore"
	"budgeter/internal/store/memstore"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{
		logger: log.OrDefault(logger, log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case JSONBackend:
		return f.createJSONBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createJSONBackend(ctx context.Context, config Config) (*BackendResult, error) {
	fs := filestore.New(config.DataDirectory)
	f.logger.InfoContext(ctx, "Initialized JSON file backend", log.FieldBackend, config.Type.String(), log.FieldPath, fs.Dir())
	return &BackendResult{Backend: fs}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	db, err := storage.NewSQLiteBackend(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
	}
	f.logger.InfoContext(ctx, "Initialized SQLite backend", log.FieldBackend, config.Type.String(), log.FieldPath, config.SQLiteDBPath)
	return &BackendResult{Backend: db, Cleanup: db.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.InfoContext(ctx, "Initialized memory backend, nothing will be persisted", log.FieldBackend, MemoryBackend.String())
	return &BackendResult{Backend: memstore.New()}, nil
}
