package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"budgeter/internal/core"
	"budgeter/internal/log"
)

// Record is anything a Collection can hold.
type Record interface {
	Validate() error
}

// Schema describes how a Collection identifies and maintains its records.
type Schema[T Record] struct {
	Kind Kind
	// KeyField names the identity field in validation errors.
	KeyField string
	Key      func(T) string
	// Prepare runs on each record before validation, on load and on add.
	// It reports whether it changed the record.
	Prepare func(*T) bool
	// Sweep drops records that must no longer be kept. It runs after load
	// and after every add and returns how many records it removed.
	Sweep func([]T) ([]T, int)
}

// Collection is an ordered, write-through collection of one record kind.
type Collection[T Record] struct {
	mu      sync.Mutex
	schema  Schema[T]
	backend Backend
	logger  *log.Logger
	items   []T
}

func NewCollection[T Record](backend Backend, schema Schema[T], logger *log.Logger) *Collection[T] {
	return &Collection[T]{
		schema:  schema,
		backend: backend,
		logger:  log.OrDefault(logger, log.ComponentStore).With(log.FieldKind, string(schema.Kind)),
	}
}

// Kind returns the record kind held by the collection.
func (c *Collection[T]) Kind() Kind { return c.schema.Kind }

// Load replaces the in-memory records with the persisted ones. A missing
// document yields an empty collection. If preparing or sweeping the loaded
// records changed them, the result is saved back.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := c.backend.Read(ctx, c.schema.Kind)
	if errors.Is(err, ErrNoDocument) {
		c.items = nil
		c.logger.DebugContext(ctx, "No persisted data, starting empty", log.FieldOperation, log.OpLoad)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", c.schema.Kind, err)
	}

	items, err := c.decode(data)
	if err != nil {
		return &CorruptStoreError{Kind: c.schema.Kind, Err: err}
	}

	changed := false
	for i := range items {
		if c.schema.Prepare != nil && c.schema.Prepare(&items[i]) {
			changed = true
		}
	}
	if err := c.checkAll(items); err != nil {
		return &CorruptStoreError{Kind: c.schema.Kind, Err: err}
	}

	c.items = items
	if c.sweepLocked(ctx) > 0 {
		changed = true
	}
	c.logger.DebugContext(ctx, "Loaded records",
		log.FieldOperation, log.OpLoad,
		log.FieldCount, len(c.items),
		log.FieldBytes, len(data))

	if changed {
		return c.saveLocked(ctx)
	}
	return nil
}

// Save writes the current records to the backend.
func (c *Collection[T]) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked(ctx)
}

// Add validates rec, appends it and saves. The returned record is the one
// actually stored, after Prepare.
func (c *Collection[T]) Add(ctx context.Context, rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.schema.Prepare != nil {
		c.schema.Prepare(&rec)
	}
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	key := c.schema.Key(rec)
	if c.indexLocked(key) >= 0 {
		return rec, c.duplicate(key)
	}

	c.items = append(c.items, rec)
	c.sweepLocked(ctx)
	c.logger.DebugContext(ctx, "Record added", log.FieldOperation, log.OpCreate, log.FieldKey, key)
	return rec, c.saveLocked(ctx)
}

// Update applies change to a copy of the record identified by key,
// validates the result and stores it in place. Changing the key is allowed
// as long as the new key is free.
func (c *Collection[T]) Update(ctx context.Context, key string, change func(*T)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	idx := c.indexLocked(key)
	if idx < 0 {
		return zero, &NotFoundError{Kind: c.schema.Kind, Key: key}
	}

	updated := c.items[idx]
	change(&updated)
	if err := updated.Validate(); err != nil {
		return zero, err
	}
	if newKey := c.schema.Key(updated); newKey != key {
		if c.indexLocked(newKey) >= 0 {
			return zero, c.duplicate(newKey)
		}
	}

	c.items[idx] = updated
	c.logger.DebugContext(ctx, "Record updated", log.FieldOperation, log.OpUpdate, log.FieldKey, key)
	return updated, c.saveLocked(ctx)
}

// Remove deletes the record identified by key and saves.
func (c *Collection[T]) Remove(ctx context.Context, key string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	idx := c.indexLocked(key)
	if idx < 0 {
		return zero, &NotFoundError{Kind: c.schema.Kind, Key: key}
	}

	removed := c.items[idx]
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	c.logger.DebugContext(ctx, "Record removed", log.FieldOperation, log.OpDelete, log.FieldKey, key)
	return removed, c.saveLocked(ctx)
}

// Reset empties the collection and saves, discarding whatever was
// persisted. It is the recovery path for a CorruptStoreError.
func (c *Collection[T]) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.logger.WarnContext(ctx, "Store reset to empty", log.FieldOperation, log.OpReset)
	return c.saveLocked(ctx)
}

// Sweep runs the schema sweep on demand and saves when records were
// dropped. It returns the number of records removed.
func (c *Collection[T]) Sweep(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.sweepLocked(ctx)
	if n == 0 {
		return 0, nil
	}
	return n, c.saveLocked(ctx)
}

// Get returns the record identified by key.
func (c *Collection[T]) Get(key string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	idx := c.indexLocked(key)
	if idx < 0 {
		return zero, &NotFoundError{Kind: c.schema.Kind, Key: key}
	}
	return c.items[idx], nil
}

// List returns a copy of the records in insertion order.
func (c *Collection[T]) List() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Collection[T]) indexLocked(key string) int {
	for i, it := range c.items {
		if c.schema.Key(it) == key {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) sweepLocked(ctx context.Context) int {
	if c.schema.Sweep == nil {
		return 0
	}
	kept, removed := c.schema.Sweep(c.items)
	if removed > 0 {
		c.items = kept
		c.logger.InfoContext(ctx, "Swept expired records", log.FieldOperation, log.OpPrune, log.FieldPruned, removed)
	}
	return removed
}

func (c *Collection[T]) saveLocked(ctx context.Context) error {
	items := c.items
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return &PersistenceError{Kind: c.schema.Kind, Err: fmt.Errorf("encode: %w", err)}
	}
	if err := c.backend.Write(ctx, c.schema.Kind, data); err != nil {
		c.logger.ErrorContext(ctx, "Save failed", log.NewFields().
			WithOperation(log.OpSave).
			WithError(err, log.ErrorTypePersistence).
			ToSlice()...)
		return &PersistenceError{Kind: c.schema.Kind, Err: err}
	}
	c.logger.DebugContext(ctx, "Saved records", log.FieldOperation, log.OpSave, log.FieldCount, len(items))
	return nil
}

func (c *Collection[T]) decode(data []byte) ([]T, error) {
	var items []T
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after the record list")
	}
	return items, nil
}

// checkAll validates every loaded record and rejects duplicate keys.
func (c *Collection[T]) checkAll(items []T) error {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		key := c.schema.Key(it)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("record %d: duplicate %s %q", i, c.schema.KeyField, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (c *Collection[T]) duplicate(key string) error {
	return &core.ValidationError{
		Field: c.schema.KeyField,
		Err:   fmt.Errorf("%w: %q already exists", core.ErrDuplicateRecord, key),
	}
}
