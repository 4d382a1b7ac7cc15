package store

import (
	"time"

	"github.com/google/uuid"

	"budgeter/internal/core"
	"budgeter/internal/log"
)

type (
	Goals        = Collection[core.Goal]
	Bills        = Collection[core.Bill]
	Balance      = Document[core.Balance]
	MainGoal     = Document[core.MainGoalRef]
	Transactions = Collection[core.Transaction]
)

// NewGoals returns the goal collection, keyed by name.
func NewGoals(backend Backend, logger *log.Logger) *Goals {
	return NewCollection(backend, Schema[core.Goal]{
		Kind:     KindGoals,
		KeyField: "name",
		Key:      func(g core.Goal) string { return g.Name },
	}, logger)
}

// NewBills returns the bill collection, keyed by title.
func NewBills(backend Backend, logger *log.Logger) *Bills {
	return NewCollection(backend, Schema[core.Bill]{
		Kind:     KindBills,
		KeyField: "title",
		Key:      func(b core.Bill) string { return b.Title },
	}, logger)
}

func NewBalance(backend Backend, logger *log.Logger) *Balance {
	return NewDocument[core.Balance](backend, KindBalance, nil, logger)
}

func NewMainGoal(backend Backend, logger *log.Logger) *MainGoal {
	return NewDocument[core.MainGoalRef](backend, KindMainGoal, nil, logger)
}

// NewTransactions returns the transaction collection. Records get a random
// ID when they have none, and everything older than the retention window
// relative to now() is swept on load and after each add.
func NewTransactions(backend Backend, now func() time.Time, logger *log.Logger) *Transactions {
	if now == nil {
		now = time.Now
	}
	return NewCollection(backend, Schema[core.Transaction]{
		Kind:     KindTransactions,
		KeyField: "id",
		Key:      func(t core.Transaction) string { return t.ID },
		Prepare: func(t *core.Transaction) bool {
			if t.ID != "" {
				return false
			}
			t.ID = uuid.NewString()
			return true
		},
		Sweep: func(txs []core.Transaction) ([]core.Transaction, int) {
			kept, removed := core.Prune(txs, now())
			return kept, len(removed)
		},
	}, logger)
}
