package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"budgeter/internal/core"
	"budgeter/internal/log"
	"budgeter/internal/store"
)

// Options configures Open.
type Options struct {
	// Clock supplies the current time for the retention sweep and default
	// transaction dates. Defaults to time.Now.
	Clock func() time.Time
	// ResetCorrupt reinitialises a store whose persisted data is corrupt
	// instead of failing Open. The reset is logged as a warning.
	ResetCorrupt bool
	Logger       *log.Logger
}

// Ledger owns one store per record kind and keeps the cross-store rules:
// transactions move the balance, and the main goal reference follows goal
// renames and removals.
type Ledger struct {
	goals    *store.Goals
	bills    *store.Bills
	balance  *store.Balance
	mainGoal *store.MainGoal
	txs      *store.Transactions

	clock  func() time.Time
	logger *log.Logger
}

type loadable interface {
	Kind() store.Kind
	Load(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Open builds the stores on top of backend and loads all of them.
func Open(ctx context.Context, backend store.Backend, opts Options) (*Ledger, error) {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := log.OrDefault(opts.Logger, log.ComponentLedger)

	l := &Ledger{
		goals:    store.NewGoals(backend, opts.Logger),
		bills:    store.NewBills(backend, opts.Logger),
		balance:  store.NewBalance(backend, opts.Logger),
		mainGoal: store.NewMainGoal(backend, opts.Logger),
		txs:      store.NewTransactions(backend, clock, opts.Logger),
		clock:    clock,
		logger:   logger,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []loadable{l.goals, l.bills, l.balance, l.txs, l.mainGoal} {
		s := s
		g.Go(func() error {
			return l.load(gctx, s, opts.ResetCorrupt)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpStartup,
		"goals", l.goals.Len(),
		"bills", l.bills.Len(),
		"transactions", l.txs.Len(),
		log.FieldBalance, l.balance.Get().Balance.Cents)
	return l, nil
}

func (l *Ledger) load(ctx context.Context, s loadable, resetCorrupt bool) error {
	err := s.Load(ctx)
	if err == nil {
		return nil
	}
	var corrupt *store.CorruptStoreError
	if !resetCorrupt || !errors.As(err, &corrupt) {
		return err
	}
	l.logger.WarnContext(ctx, "Discarding corrupt store",
		log.NewFields().
			WithOperation(log.OpReset).
			WithKind(string(s.Kind())).
			WithError(err, log.ErrorTypeCorrupt).
			ToSlice()...)
	return s.Reset(ctx)
}

// Now returns the ledger's notion of the current time.
func (l *Ledger) Now() time.Time { return l.clock() }

// Goals

func (l *Ledger) Goals() []core.Goal { return l.goals.List() }

func (l *Ledger) Goal(name string) (core.Goal, error) { return l.goals.Get(name) }

// AddGoal stores a new goal. The first goal added becomes the main goal
// when none is selected.
func (l *Ledger) AddGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	added, err := l.goals.Add(ctx, g)
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		return added, err
	}
	l.logger.InfoContext(ctx, "Goal added", log.FieldGoal, added.Name, log.FieldAmountCents, added.TargetAmount.Cents)

	if l.mainGoal.Get().Name == "" {
		err = errors.Join(err, l.mainGoal.Set(ctx, core.MainGoalRef{Name: added.Name}))
	}
	return added, err
}

// UpdateGoal edits the goal called name. A rename carries the main goal
// selection along.
func (l *Ledger) UpdateGoal(ctx context.Context, name string, change func(*core.Goal)) (core.Goal, error) {
	updated, err := l.goals.Update(ctx, name, change)
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		return updated, err
	}
	l.logger.InfoContext(ctx, "Goal updated", log.FieldGoal, name)

	if updated.Name != name && l.mainGoal.Get().Name == name {
		err = errors.Join(err, l.mainGoal.Set(ctx, core.MainGoalRef{Name: updated.Name}))
	}
	return updated, err
}

// RemoveGoal deletes a goal. If it was the main goal, the first remaining
// goal takes its place, or the selection is cleared.
func (l *Ledger) RemoveGoal(ctx context.Context, name string) error {
	_, err := l.goals.Remove(ctx, name)
	if err != nil && !errors.Is(err, store.ErrPersistence) {
		return err
	}
	l.logger.InfoContext(ctx, "Goal removed", log.FieldGoal, name)

	if l.mainGoal.Get().Name == name {
		next := core.MainGoalRef{}
		if remaining := l.goals.List(); len(remaining) > 0 {
			next.Name = remaining[0].Name
		}
		err = errors.Join(err, l.mainGoal.Set(ctx, next))
	}
	return err
}

// SetMainGoal selects the goal shown as the main one.
func (l *Ledger) SetMainGoal(ctx context.Context, name string) error {
	if _, err := l.goals.Get(name); err != nil {
		return err
	}
	return l.mainGoal.Set(ctx, core.MainGoalRef{Name: name})
}

// MainGoal returns the selected goal. The second result is false when no
// goal is selected or the selection no longer exists.
func (l *Ledger) MainGoal() (core.Goal, bool) {
	ref := l.mainGoal.Get()
	if ref.Name == "" {
		return core.Goal{}, false
	}
	g, err := l.goals.Get(ref.Name)
	if err != nil {
		return core.Goal{}, false
	}
	return g, true
}

func (l *Ledger) GoalProgress(name string) (core.GoalStatus, error) {
	g, err := l.goals.Get(name)
	if err != nil {
		return core.GoalStatus{}, err
	}
	return core.NewGoalStatus(g), nil
}

// ETA forecasts when the named goal is reached at the current weekly pace.
func (l *Ledger) ETA(name string) (core.ETA, error) {
	g, err := l.goals.Get(name)
	if err != nil {
		return core.ETA{}, err
	}
	return core.EstimateETA(g, l.txs.List(), l.clock()), nil
}

// Bills

func (l *Ledger) Bills() []core.Bill { return l.bills.List() }

func (l *Ledger) AddBill(ctx context.Context, b core.Bill) (core.Bill, error) {
	added, err := l.bills.Add(ctx, b)
	if err == nil || errors.Is(err, store.ErrPersistence) {
		l.logger.InfoContext(ctx, "Bill added", log.FieldBill, added.Title, log.FieldAmountCents, added.Amount.Cents)
	}
	return added, err
}

func (l *Ledger) UpdateBill(ctx context.Context, title string, change func(*core.Bill)) (core.Bill, error) {
	return l.bills.Update(ctx, title, change)
}

func (l *Ledger) RemoveBill(ctx context.Context, title string) error {
	_, err := l.bills.Remove(ctx, title)
	return err
}

// Balance

func (l *Ledger) Balance() core.Money { return l.balance.Get().Balance }

// SetBalance overrides the running total with a user supplied value.
func (l *Ledger) SetBalance(ctx context.Context, m core.Money) error {
	l.logger.InfoContext(ctx, "Balance set", log.FieldBalance, m.Cents)
	return l.balance.Set(ctx, core.Balance{Balance: m})
}

// Transactions

func (l *Ledger) Transactions() []core.Transaction { return l.txs.List() }

// AddTransaction records tx and moves the balance by its signed amount. A
// zero date means today. The transaction store is written before the
// balance; the two writes are not atomic together.
func (l *Ledger) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.Date.IsZero() {
		tx.Date = core.DateOf(l.clock())
	}
	if err := tx.Validate(); err != nil {
		return tx, err
	}

	added, txErr := l.txs.Add(ctx, tx)
	if txErr != nil && !errors.Is(txErr, store.ErrPersistence) {
		return added, txErr
	}

	bal, balErr := l.balance.Update(ctx, func(b *core.Balance) {
		b.Balance = b.Balance.Add(added.Signed())
	})
	fields := log.NewFields().WithAmount(added.Amount.Cents)
	fields[log.FieldTxKind] = string(added.Kind)
	fields[log.FieldCategory] = added.Category
	fields[log.FieldBalance] = bal.Balance.Cents
	l.logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)

	if err := errors.Join(txErr, balErr); err != nil {
		return added, fmt.Errorf("transaction applied but not fully saved: %w", err)
	}
	return added, nil
}

func (l *Ledger) RecordIncome(ctx context.Context, amount core.Money, category, note string) (core.Transaction, error) {
	return l.AddTransaction(ctx, core.Transaction{Kind: core.Income, Category: category, Amount: amount, Note: note})
}

func (l *Ledger) RecordExpense(ctx context.Context, amount core.Money, category, note string) (core.Transaction, error) {
	return l.AddTransaction(ctx, core.Transaction{Kind: core.Expense, Category: category, Amount: amount, Note: note})
}

// RemoveTransaction deletes a transaction. The balance is left untouched:
// removing history is not an undo.
func (l *Ledger) RemoveTransaction(ctx context.Context, id string) error {
	_, err := l.txs.Remove(ctx, id)
	return err
}

// Prune applies the retention sweep now and returns how many transactions
// were dropped. The balance is never touched.
func (l *Ledger) Prune(ctx context.Context) (int, error) {
	return l.txs.Sweep(ctx)
}

// Insights

// retained is the transaction list as of the current clock, without
// touching the store.
func (l *Ledger) retained() []core.Transaction {
	kept, _ := core.Prune(l.txs.List(), l.clock())
	return kept
}

func (l *Ledger) WeeklySpendByCategory() map[string]core.Money {
	return core.WeeklySpendByCategory(l.retained())
}

func (l *Ledger) NetChange() core.Money {
	return core.NetChange(l.retained())
}

func (l *Ledger) TotalUpcomingBills() core.Money {
	return core.TotalUpcomingBills(l.bills.List())
}

// Summary gathers the dashboard figures in one call.
func (l *Ledger) Summary() core.WeekOverview {
	var main *core.Goal
	if g, ok := l.MainGoal(); ok {
		main = &g
	}
	return core.Overview(l.balance.Get(), l.retained(), l.bills.List(), main)
}
