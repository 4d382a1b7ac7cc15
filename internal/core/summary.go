package core

import (
	"sort"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// WeekOverview is the snapshot shown on the dashboard.
type WeekOverview struct {
	Balance       Money
	NetChange     Money
	Income        Money
	Spent         Money
	ByCategory    []CategoryAmount // largest first
	UpcomingBills Money
	MainGoal      *GoalStatus
}

// GoalStatus pairs a goal with its derived progress.
type GoalStatus struct {
	Goal    Goal
	Ratio   float64
	Percent int
}

// NewGoalStatus derives the progress figures of g.
func NewGoalStatus(g Goal) GoalStatus {
	ratio, percent := Progress(g)
	return GoalStatus{Goal: g, Ratio: ratio, Percent: percent}
}

// WeeklySpendByCategory sums expenses per category. Categories without
// expenses are absent from the result, so a missing key means zero.
func WeeklySpendByCategory(txs []Transaction) map[string]Money {
	out := make(map[string]Money)
	for _, t := range txs {
		if t.Kind != Expense {
			continue
		}
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// NetChange is total income minus total expenses.
func NetChange(txs []Transaction) Money {
	var net Money
	for _, t := range txs {
		net = net.Add(t.Signed())
	}
	return net
}

// TotalUpcomingBills sums every bill; bills carry no due date.
func TotalUpcomingBills(bills []Bill) Money {
	var total Money
	for _, b := range bills {
		total = total.Add(b.Amount)
	}
	return total
}

// SortedCategories turns a category map into a slice ordered by amount
// (descending) and then by name, so output is stable.
func SortedCategories(byCategory map[string]Money) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(byCategory))
	for name, amount := range byCategory {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Overview builds a WeekOverview from already pruned transactions.
// mainGoal may be nil when no goal is selected.
func Overview(balance Balance, txs []Transaction, bills []Bill, mainGoal *Goal) WeekOverview {
	ov := WeekOverview{
		Balance:       balance.Balance,
		NetChange:     NetChange(txs),
		ByCategory:    SortedCategories(WeeklySpendByCategory(txs)),
		UpcomingBills: TotalUpcomingBills(bills),
	}
	for _, t := range txs {
		if t.Kind == Income {
			ov.Income = ov.Income.Add(t.Amount)
		} else {
			ov.Spent = ov.Spent.Add(t.Amount)
		}
	}
	if mainGoal != nil {
		status := NewGoalStatus(*mainGoal)
		ov.MainGoal = &status
	}
	return ov
}
