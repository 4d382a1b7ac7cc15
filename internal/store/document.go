package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"budgeter/internal/log"
)

// Document is a write-through store for a single value such as the
// balance. A missing document loads as the zero value.
type Document[T any] struct {
	mu       sync.Mutex
	kind     Kind
	backend  Backend
	logger   *log.Logger
	validate func(T) error
	value    T
}

// NewDocument creates a singleton store. validate may be nil.
func NewDocument[T any](backend Backend, kind Kind, validate func(T) error, logger *log.Logger) *Document[T] {
	return &Document[T]{
		kind:     kind,
		backend:  backend,
		validate: validate,
		logger:   log.OrDefault(logger, log.ComponentStore).With(log.FieldKind, string(kind)),
	}
}

func (d *Document[T]) Kind() Kind { return d.kind }

func (d *Document[T]) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	data, err := d.backend.Read(ctx, d.kind)
	if errors.Is(err, ErrNoDocument) {
		d.value = zero
		d.logger.DebugContext(ctx, "No persisted data, starting from zero value", log.FieldOperation, log.OpLoad)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", d.kind, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return &CorruptStoreError{Kind: d.kind, Err: err}
	}
	if d.validate != nil {
		if err := d.validate(v); err != nil {
			return &CorruptStoreError{Kind: d.kind, Err: err}
		}
	}
	d.value = v
	d.logger.DebugContext(ctx, "Loaded document", log.FieldOperation, log.OpLoad, log.FieldBytes, len(data))
	return nil
}

func (d *Document[T]) Save(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveLocked(ctx)
}

// Get returns the current value.
func (d *Document[T]) Get() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Set validates v, stores it and saves.
func (d *Document[T]) Set(ctx context.Context, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.validate != nil {
		if err := d.validate(v); err != nil {
			return err
		}
	}
	d.value = v
	return d.saveLocked(ctx)
}

// Update applies change to a copy of the value, validates and saves it.
// The change and the save happen under one lock so concurrent updates do
// not lose each other.
func (d *Document[T]) Update(ctx context.Context, change func(*T)) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.value
	change(&v)
	if d.validate != nil {
		if err := d.validate(v); err != nil {
			return d.value, err
		}
	}
	d.value = v
	return v, d.saveLocked(ctx)
}

// Reset restores the zero value and saves it.
func (d *Document[T]) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero T
	d.value = zero
	d.logger.WarnContext(ctx, "Document reset to zero value", log.FieldOperation, log.OpReset)
	return d.saveLocked(ctx)
}

func (d *Document[T]) saveLocked(ctx context.Context) error {
	data, err := json.MarshalIndent(d.value, "", "  ")
	if err != nil {
		return &PersistenceError{Kind: d.kind, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := d.backend.Write(ctx, d.kind, data); err != nil {
		d.logger.ErrorContext(ctx, "Save failed", log.NewFields().
			WithOperation(log.OpSave).
			WithError(err, log.ErrorTypePersistence).
			ToSlice()...)
		return &PersistenceError{Kind: d.kind, Err: err}
	}
	d.logger.DebugContext(ctx, "Saved document", log.FieldOperation, log.OpSave)
	return nil
}
