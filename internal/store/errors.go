package store

import (
	"errors"
	"fmt"

	"budgeter/internal/core"
)

var (
	// ErrNoDocument is returned by a Backend when nothing has been persisted
	// for a kind yet.
	ErrNoDocument = errors.New("document does not exist")

	ErrNotFound    = errors.New("record not found")
	ErrCorrupt     = errors.New("corrupt store")
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError is the core validation error, re-exported so callers of
// the store need a single import to classify failures.
type ValidationError = core.ValidationError

// NotFoundError is returned by Update, Remove and Get for an unknown key.
type NotFoundError struct {
	Kind Kind
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CorruptStoreError means the persisted document exists but cannot be used.
// The caller decides whether to abort or to Reset the store.
type CorruptStoreError struct {
	Kind Kind
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("%s: corrupt persisted data: %v", e.Kind, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

func (e *CorruptStoreError) Is(target error) bool { return target == ErrCorrupt }

// PersistenceError means a write-through save failed. The in-memory state
// keeps the mutation; it is applied but not durable.
type PersistenceError struct {
	Kind Kind
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: save failed: %v", e.Kind, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
