package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/log"
	"budgeter/internal/store"
	"budgeter/internal/store/memstore"
)

var testNow = time.Date(2024, 12, 10, 12, 0, 0, 0, time.UTC)

func openLedger(t *testing.T, backend store.Backend, clock func() time.Time) *Ledger {
	t.Helper()
	if clock == nil {
		clock = func() time.Time { return testNow }
	}
	l, err := Open(context.Background(), backend, Options{Clock: clock, Logger: log.Discard()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return l
}

func TestLedger_TransactionsMoveBalance(t *testing.T) {
	ctx := context.Background()
	backend := memstore.New()
	l := openLedger(t, backend, nil)

	if err := l.SetBalance(ctx, core.Cents(10000)); err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}

	tx, err := l.RecordIncome(ctx, core.Cents(5000), "Personal", "")
	if err != nil {
		t.Fatalf("RecordIncome failed: %v", err)
	}
	if tx.ID == "" {
		t.Error("recorded transaction should have an id")
	}
	if !tx.Date.Equal(core.NewDate(2024, 12, 10).Time) {
		t.Errorf("expected default date 2024-12-10, got %s", tx.Date)
	}
	if got := l.Balance(); got.Cents != 15000 {
		t.Fatalf("expected balance 150.00 after income, got %s", got)
	}

	if _, err := l.RecordExpense(ctx, core.Cents(3000), "Food", "groceries"); err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	if got := l.Balance(); got.Cents != 12000 {
		t.Fatalf("expected balance 120.00 after expense, got %s", got)
	}

	reopened := openLedger(t, backend, nil)
	if got := reopened.Balance(); got.Cents != 12000 {
		t.Errorf("expected persisted balance 120.00, got %s", got)
	}
	if got := len(reopened.Transactions()); got != 2 {
		t.Errorf("expected 2 persisted transactions, got %d", got)
	}
}

func TestLedger_AddTransactionRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memstore.New(), nil)

	tests := []struct {
		name string
		tx   core.Transaction
	}{
		{"zero amount", core.Transaction{Kind: core.Expense, Category: "Food"}},
		{"negative amount", core.Transaction{Kind: core.Expense, Category: "Food", Amount: core.Cents(-100)}},
		{"empty category", core.Transaction{Kind: core.Income, Amount: core.Cents(100)}},
		{"unknown kind", core.Transaction{Kind: "Refund", Category: "Food", Amount: core.Cents(100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.AddTransaction(ctx, tt.tx)
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	if got := l.Balance(); !got.IsZero() {
		t.Errorf("balance should be untouched, got %s", got)
	}
	if got := len(l.Transactions()); got != 0 {
		t.Errorf("no transaction should be stored, got %d", got)
	}
}

func TestLedger_MainGoalFollowsGoals(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memstore.New(), nil)

	if _, ok := l.MainGoal(); ok {
		t.Fatal("empty ledger should have no main goal")
	}

	if _, err := l.AddGoal(ctx, core.Goal{Name: "Laptop", TargetAmount: core.Cents(100000)}); err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}
	if _, err := l.AddGoal(ctx, core.Goal{Name: "Trip", CurrentAmount: core.Cents(5000), TargetAmount: core.Cents(20000)}); err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}
	if g, ok := l.MainGoal(); !ok || g.Name != "Laptop" {
		t.Fatalf("first goal should become main, got %q (%v)", g.Name, ok)
	}

	if _, err := l.UpdateGoal(ctx, "Laptop", func(g *core.Goal) { g.Name = "New laptop" }); err != nil {
		t.Fatalf("UpdateGoal failed: %v", err)
	}
	if g, ok := l.MainGoal(); !ok || g.Name != "New laptop" {
		t.Fatalf("main goal should follow rename, got %q (%v)", g.Name, ok)
	}

	if err := l.RemoveGoal(ctx, "New laptop"); err != nil {
		t.Fatalf("RemoveGoal failed: %v", err)
	}
	if g, ok := l.MainGoal(); !ok || g.Name != "Trip" {
		t.Fatalf("remaining goal should become main, got %q (%v)", g.Name, ok)
	}

	if err := l.RemoveGoal(ctx, "Trip"); err != nil {
		t.Fatalf("RemoveGoal failed: %v", err)
	}
	if _, ok := l.MainGoal(); ok {
		t.Error("main goal should be cleared once no goals remain")
	}
}

func TestLedger_SetMainGoal(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memstore.New(), nil)

	err := l.SetMainGoal(ctx, "Missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	for _, name := range []string{"A", "B"} {
		if _, err := l.AddGoal(ctx, core.Goal{Name: name, TargetAmount: core.Cents(1000)}); err != nil {
			t.Fatalf("AddGoal failed: %v", err)
		}
	}
	if err := l.SetMainGoal(ctx, "B"); err != nil {
		t.Fatalf("SetMainGoal failed: %v", err)
	}
	if g, _ := l.MainGoal(); g.Name != "B" {
		t.Errorf("expected main goal B, got %q", g.Name)
	}

	status, err := l.GoalProgress("A")
	if err != nil {
		t.Fatalf("GoalProgress failed: %v", err)
	}
	if status.Percent != 0 {
		t.Errorf("expected 0%%, got %d%%", status.Percent)
	}
	if _, err := l.GoalProgress("Missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLedger_DuplicateGoal(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memstore.New(), nil)

	goal := core.Goal{Name: "Laptop", TargetAmount: core.Cents(1000)}
	if _, err := l.AddGoal(ctx, goal); err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}
	if _, err := l.AddGoal(ctx, goal); !errors.Is(err, core.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
	if got := len(l.Goals()); got != 1 {
		t.Errorf("expected 1 goal, got %d", got)
	}
}

func TestLedger_Bills(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memstore.New(), nil)

	for _, b := range []core.Bill{
		{Title: "Rent", Amount: core.Cents(50000)},
		{Title: "Phone", Amount: core.Cents(1500)},
	} {
		if _, err := l.AddBill(ctx, b); err != nil {
			t.Fatalf("AddBill failed: %v", err)
		}
	}
	if got := l.TotalUpcomingBills(); got.Cents != 51500 {
		t.Errorf("expected 515.00, got %s", got)
	}

	if _, err := l.UpdateBill(ctx, "Phone", func(b *core.Bill) { b.Amount = core.Cents(2000) }); err != nil {
		t.Fatalf("UpdateBill failed: %v", err)
	}
	if err := l.RemoveBill(ctx, "Rent"); err != nil {
		t.Fatalf("RemoveBill failed: %v", err)
	}
	if got := l.TotalUpcomingBills(); got.Cents != 2000 {
		t.Errorf("expected 20.00, got %s", got)
	}
	if err := l.RemoveBill(ctx, "Rent"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLedger_SummaryOverRetainedWindow(t *testing.T) {
	backend := memstore.New()
	backend.Put(store.KindTransactions, []byte(`[
		{"date": "2024-12-09", "kind": "Expense", "category": "Food", "amount": 12.00},
		{"date": "2024-12-08", "kind": "Expense", "category": "Food", "amount": 7.50},
		{"date": "2024-12-03", "kind": "Expense", "category": "Personal", "amount": 20.00},
		{"date": "2024-12-01", "kind": "Income", "category": "Other", "amount": 500.00}
	]`))
	backend.Put(store.KindBalance, []byte(`{"balance": 250.00}`))
	backend.Put(store.KindBills, []byte(`[{"title": "Rent", "amount": 400.00}]`))
	backend.Put(store.KindGoals, []byte(`[{"name": "Bike", "current_amount": 50, "target_amount": 200}]`))
	backend.Put(store.KindMainGoal, []byte(`{"name": "Bike"}`))

	l := openLedger(t, backend, nil)

	if got := len(l.Transactions()); got != 3 {
		t.Fatalf("expected the 2024-12-01 entry to be pruned on open, got %d transactions", got)
	}

	spend := l.WeeklySpendByCategory()
	if spend["Food"].Cents != 1950 || spend["Personal"].Cents != 2000 {
		t.Errorf("unexpected weekly spend: %v", spend)
	}
	if _, ok := spend["Other"]; ok {
		t.Error("categories without expenses should be absent")
	}
	if got := l.NetChange(); got.Cents != -3950 {
		t.Errorf("expected net change -39.50, got %s", got)
	}

	sum := l.Summary()
	if sum.Balance.Cents != 25000 {
		t.Errorf("pruning must not touch the balance, got %s", sum.Balance)
	}
	if sum.UpcomingBills.Cents != 40000 {
		t.Errorf("expected upcoming bills 400.00, got %s", sum.UpcomingBills)
	}
	if sum.MainGoal == nil || sum.MainGoal.Percent != 25 {
		t.Errorf("expected main goal at 25%%, got %+v", sum.MainGoal)
	}
	if len(sum.ByCategory) != 2 || sum.ByCategory[0].Name != "Personal" {
		t.Errorf("expected Personal first, got %+v", sum.ByCategory)
	}
}

func TestLedger_PruneKeepsBalance(t *testing.T) {
	ctx := context.Background()
	now := testNow
	l := openLedger(t, memstore.New(), func() time.Time { return now })

	tx, err := l.RecordExpense(ctx, core.Cents(1000), "Food", "")
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}

	now = now.AddDate(0, 0, 7)
	if n, err := l.Prune(ctx); err != nil || n != 0 {
		t.Fatalf("entry exactly 7 days old must be kept, pruned %d (%v)", n, err)
	}

	now = now.AddDate(0, 0, 1)
	if got := l.NetChange(); !got.IsZero() {
		t.Errorf("insights should ignore expired entries, got %s", got)
	}
	n, err := l.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
	if got := l.Balance(); got.Cents != -1000 {
		t.Errorf("balance must survive pruning, got %s", got)
	}
	if err := l.RemoveTransaction(ctx, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for pruned transaction, got %v", err)
	}
}

func TestLedger_RemoveTransactionKeepsBalance(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memstore.New(), nil)

	tx, err := l.RecordIncome(ctx, core.Cents(4200), "Personal", "")
	if err != nil {
		t.Fatalf("RecordIncome failed: %v", err)
	}
	if err := l.RemoveTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("RemoveTransaction failed: %v", err)
	}
	if got := l.Balance(); got.Cents != 4200 {
		t.Errorf("expected balance 42.00, got %s", got)
	}
}

func TestLedger_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	backend := memstore.New()
	l := openLedger(t, backend, nil)

	backend.FailWrites(errors.New("disk full"))
	_, err := l.RecordExpense(ctx, core.Cents(500), "Food", "")
	if !errors.Is(err, store.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if got := l.Balance(); got.Cents != -500 {
		t.Errorf("in-memory balance should reflect the transaction, got %s", got)
	}

	backend.FailWrites(nil)
	reopened := openLedger(t, backend, nil)
	if got := len(reopened.Transactions()); got != 0 {
		t.Errorf("failed write should not be persisted, got %d transactions", got)
	}
}

func TestOpen_CorruptStore(t *testing.T) {
	ctx := context.Background()
	backend := memstore.New()
	backend.Put(store.KindGoals, []byte(`{not json`))
	backend.Put(store.KindBalance, []byte(`{"balance": 12.50}`))

	_, err := Open(ctx, backend, Options{Clock: func() time.Time { return testNow }, Logger: log.Discard()})
	if !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	var corrupt *store.CorruptStoreError
	if !errors.As(err, &corrupt) || corrupt.Kind != store.KindGoals {
		t.Fatalf("expected CorruptStoreError for goals, got %v", err)
	}

	l, err := Open(ctx, backend, Options{Clock: func() time.Time { return testNow }, ResetCorrupt: true, Logger: log.Discard()})
	if err != nil {
		t.Fatalf("Open with ResetCorrupt failed: %v", err)
	}
	if got := len(l.Goals()); got != 0 {
		t.Errorf("expected reset goals, got %d", got)
	}
	if got := l.Balance(); got.Cents != 1250 {
		t.Errorf("other stores must load normally, got balance %s", got)
	}

	data, err := backend.Read(ctx, store.KindGoals)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected reset goals to be persisted as [], got %s", data)
	}
}

func TestLedger_ETA(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, memstore.New(), nil)

	if _, err := l.AddGoal(ctx, core.Goal{Name: "Bike", CurrentAmount: core.Cents(10000), TargetAmount: core.Cents(30000)}); err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}

	eta, err := l.ETA("Bike")
	if err != nil {
		t.Fatalf("ETA failed: %v", err)
	}
	if eta.State != core.ETANoData {
		t.Errorf("expected no data, got %v", eta)
	}

	if _, err := l.RecordIncome(ctx, core.Cents(5000), "Personal", ""); err != nil {
		t.Fatalf("RecordIncome failed: %v", err)
	}
	eta, _ = l.ETA("Bike")
	if eta.State != core.ETAEstimated || eta.Weeks != 4 {
		t.Errorf("expected 4 weeks, got %+v", eta)
	}
}
