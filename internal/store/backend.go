// Package store keeps the canonical in-memory records of each kind and
// writes them through to a Backend on every mutation.
package store

import "context"

// Kind names one independently persisted record collection.
type Kind string

const (
	KindGoals        Kind = "goals"
	KindBills        Kind = "bills"
	KindBalance      Kind = "balance"
	KindTransactions Kind = "transactions"
	KindMainGoal     Kind = "main_goal"
)

// Kinds lists every kind in load order.
func Kinds() []Kind {
	return []Kind{KindGoals, KindBills, KindBalance, KindTransactions, KindMainGoal}
}

// Backend persists one JSON document per kind.
type Backend interface {
	// Read returns the stored document or ErrNoDocument.
	Read(ctx context.Context, kind Kind) ([]byte, error)
	// Write replaces the stored document. A reader must observe either the
	// previous or the new document, never a partial one.
	Write(ctx context.Context, kind Kind, data []byte) error
}
