package core

import (
	"fmt"
	"math"
	"time"
)

type ETAState int

const (
	ETAReached ETAState = iota
	ETANoData
	ETANoTrend
	ETAEstimated
)

// ETA is a rough forecast of when a goal will be reached.
type ETA struct {
	State  ETAState
	Weeks  float64
	Months float64
}

func (e ETA) String() string {
	switch e.State {
	case ETAReached:
		return "Goal reached"
	case ETANoData:
		return "Add more recent data"
	case ETANoTrend:
		return "No positive trend"
	}
	return fmt.Sprintf("~%.0f weeks (~%.1f months)", e.Weeks, e.Months)
}

// EstimateETA projects the weeks needed to close the gap on g from the
// average weekly net gain of the transactions retained at now.
func EstimateETA(g Goal, txs []Transaction, now time.Time) ETA {
	remaining := g.Remaining()
	if remaining.IsZero() {
		return ETA{State: ETAReached}
	}

	var recent []Transaction
	for _, t := range txs {
		if Retained(t, now) {
			recent = append(recent, t)
		}
	}
	if len(recent) == 0 {
		return ETA{State: ETANoData}
	}

	net := NetChange(recent)
	perWeek := float64(net.Cents) / math.Max(1, float64(RetentionDays)/7)
	if perWeek <= 0 {
		return ETA{State: ETANoTrend}
	}

	weeks := float64(remaining.Cents) / perWeek
	return ETA{State: ETAEstimated, Weeks: weeks, Months: weeks / 4}
}
