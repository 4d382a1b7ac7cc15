package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budgeter/internal/core"
	"budgeter/internal/store"
)

const progressBarWidth = 20

// Printer renders ledger data as text. Colors are only emitted when the
// writer is a terminal that supports them.
type Printer struct {
	w io.Writer

	title    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	negative lipgloss.Style
	muted    lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		title:    r.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true),
		label:    r.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		value:    r.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Bold(true),
		negative: r.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
		muted:    r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
	}
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) money(m core.Money) string {
	if m.Cents < 0 {
		return p.negative.Render(m.String())
	}
	return p.value.Render(m.String())
}

func (p *Printer) row(label string, width int, value string) {
	p.line("%s %s", p.label.Width(width).Render(label), value)
}

// ProgressBar draws percent as a fixed width bar, e.g. "[#####---------------]".
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// Summary prints the weekly dashboard. eta may be nil.
func (p *Printer) Summary(ov core.WeekOverview, eta *core.ETA) {
	p.line("%s", p.title.Render("This week"))
	p.row("Balance", 16, p.money(ov.Balance))
	p.row("Income", 16, p.money(ov.Income))
	p.row("Spent", 16, p.money(ov.Spent.Neg()))
	p.row("Net change", 16, p.money(ov.NetChange))
	p.row("Upcoming bills", 16, p.money(ov.UpcomingBills))

	p.line("")
	p.line("%s", p.title.Render("Spending by category"))
	if len(ov.ByCategory) == 0 {
		p.line("%s", p.muted.Render("No expenses in the last 7 days."))
	}
	for _, c := range ov.ByCategory {
		p.row(c.Name, 16, p.money(c.Amount))
	}

	p.line("")
	p.line("%s", p.title.Render("Main goal"))
	if ov.MainGoal == nil {
		p.line("%s", p.muted.Render("No main goal selected."))
		return
	}
	p.goal(*ov.MainGoal, false)
	if eta != nil {
		p.row("ETA", 16, eta.String())
	}
}

func (p *Printer) goal(s core.GoalStatus, main bool) {
	name := s.Goal.Name
	if main {
		name += " *"
	}
	p.line("%s %s %3d%%  %s / %s",
		p.value.Width(20).Render(name),
		ProgressBar(s.Percent, progressBarWidth),
		s.Percent,
		s.Goal.CurrentAmount,
		s.Goal.TargetAmount)
}

// Goals lists goals with their progress. The main goal is starred.
func (p *Printer) Goals(goals []core.Goal, mainName string) {
	if len(goals) == 0 {
		p.line("%s", p.muted.Render("No goals yet."))
		return
	}
	for _, g := range goals {
		p.goal(core.NewGoalStatus(g), g.Name == mainName)
	}
}

func (p *Printer) Bills(bills []core.Bill) {
	if len(bills) == 0 {
		p.line("%s", p.muted.Render("No bills yet."))
		return
	}
	for _, b := range bills {
		p.row(b.Title, 24, p.money(b.Amount))
	}
	p.row("Total", 24, p.money(core.TotalUpcomingBills(bills)))
}

// Transactions lists transactions newest day first, keeping insertion
// order within a day.
func (p *Printer) Transactions(txs []core.Transaction) {
	if len(txs) == 0 {
		p.line("%s", p.muted.Render("No transactions in the last 7 days."))
		return
	}
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	for _, t := range sorted {
		note := ""
		if t.Note != "" {
			note = "  " + p.muted.Render(t.Note)
		}
		p.line("%s  %s %s %s%s",
			t.Date,
			p.label.Width(12).Render(t.Category),
			p.money(t.Signed()),
			p.muted.Render(shortID(t.ID)),
			note)
	}
}

func (p *Printer) Balance(m core.Money) {
	p.row("Balance", 16, p.money(m))
}

// shortID trims a transaction id to something a user can type.
func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

const shortIDLen = 8

// ResolveTransactionID expands a typed id prefix to the full id of exactly
// one transaction.
func ResolveTransactionID(txs []core.Transaction, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("empty transaction id")
	}
	var match string
	for _, t := range txs {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("transaction id %q is ambiguous", prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", &store.NotFoundError{Kind: store.KindTransactions, Key: prefix}
	}
	return match, nil
}
