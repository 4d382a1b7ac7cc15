package core

import "time"

// RetentionDays is how many calendar days a transaction is kept for.
const RetentionDays = 7

// Retained reports whether t is still inside the retention window at now.
// The comparison uses calendar days so the time of day never matters: a
// transaction exactly RetentionDays old is kept. Future-dated entries are
// kept as well.
func Retained(t Transaction, now time.Time) bool {
	return t.Date.DaysUntil(DateOf(now)) <= RetentionDays
}

// Prune splits txs into the transactions still retained at now and the ones
// that fell out of the window. Order is preserved and txs is not modified.
func Prune(txs []Transaction, now time.Time) (kept, removed []Transaction) {
	kept = make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if Retained(t, now) {
			kept = append(kept, t)
		} else {
			removed = append(removed, t)
		}
	}
	return kept, removed
}
