package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionKind = "Income"
	Expense TransactionKind = "Expense"
)

// dateLayout is the ISO calendar date used on disk.
const dateLayout = "2006-01-02"

// timestampLayouts are the ISO timestamps older files stored in place of a
// date, with optional fraction and zone.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

type (
	TransactionKind string

	Date struct {
		time.Time
	}

	Goal struct {
		Name          string `json:"name"`
		CurrentAmount Money  `json:"current_amount"`
		TargetAmount  Money  `json:"target_amount"`
	}

	Bill struct {
		Title  string `json:"title"`
		Amount Money  `json:"amount"`
	}

	// Balance is the running cash total. It is persisted on its own and never
	// recomputed from transaction history.
	Balance struct {
		Balance Money `json:"balance"`
	}

	// MainGoalRef remembers which goal is shown as the main one. An empty
	// name means no selection.
	MainGoalRef struct {
		Name string `json:"name"`
	}

	Transaction struct {
		ID       string          `json:"id,omitempty"`
		Date     Date            `json:"date"`
		Kind     TransactionKind `json:"kind"`
		Category string          `json:"category"`
		Amount   Money           `json:"amount"` // always positive, Kind carries the sign
		Note     string          `json:"note,omitempty"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeAmount  = errors.New("amount cannot be negative")
	ErrInvalidTarget   = errors.New("target amount must be greater than zero")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrDuplicateRecord = errors.New("duplicate record")
)

// ValidationError reports a record that violates one of its invariants.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date t falls on in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts an ISO calendar date. A full ISO timestamp is also
// accepted and truncated to the date it names, which is how older files
// stored it.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Round(time.Hour).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// ParseKind maps user or file input to a TransactionKind, ignoring case.
func ParseKind(s string) (TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k TransactionKind) Valid() bool {
	return k == Income || k == Expense
}

func (k *TransactionKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("kind must be a string: %w", err)
	}
	kind, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if g.CurrentAmount.Cents < 0 {
		return invalid("current_amount", ErrNegativeAmount)
	}
	if g.TargetAmount.Cents <= 0 {
		return invalid("target_amount", ErrInvalidTarget)
	}
	return nil
}

// Remaining is how much is still missing to reach the target, never negative.
func (g Goal) Remaining() Money {
	if g.CurrentAmount.Cents >= g.TargetAmount.Cents {
		return Money{}
	}
	return g.TargetAmount.Sub(g.CurrentAmount)
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return invalid("title", ErrEmptyTitle)
	}
	if b.Amount.Cents < 0 {
		return invalid("amount", ErrNegativeAmount)
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	if !t.Kind.Valid() {
		return invalid("kind", ErrInvalidKind)
	}
	if strings.TrimSpace(t.Category) == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if err := t.Amount.Validate(); err != nil {
		return invalid("amount", err)
	}
	return nil
}

// Signed returns the amount with the sign implied by the kind.
func (t Transaction) Signed() Money {
	if t.Kind == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// UnmarshalJSON also understands the legacy "timestamp" field written
// before transactions carried a plain date.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	var aux struct {
		plain
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Transaction(aux.plain)
	if t.Date.IsZero() && aux.Timestamp != "" {
		d, err := ParseDate(aux.Timestamp)
		if err != nil {
			return err
		}
		t.Date = d
	}
	return nil
}

// UnmarshalJSON accepts either {"balance": n} or a bare number. A null
// document leaves the balance unchanged.
func (b *Balance) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "{") {
		return b.Balance.UnmarshalJSON(data)
	}
	type plain Balance
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Balance(p)
	return nil
}
