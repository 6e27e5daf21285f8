// Package sla provides deadline arithmetic and the periodic monitor that
// flags requests approaching or exceeding their processing budget.
package sla

import "time"

// DefaultWarnThresholdPct is the elapsed-budget percentage past which a
// request is considered at risk when the workflow does not set its own.
const DefaultWarnThresholdPct = 70

// CalculateDeadline computes the absolute deadline from an SLA duration.
func CalculateDeadline(slaSeconds int, from time.Time) time.Time {
	return from.Add(time.Duration(slaSeconds) * time.Second)
}

// RemainingSeconds returns the seconds until deadline. Negative means overdue.
func RemainingSeconds(deadline, now time.Time) float64 {
	return deadline.Sub(now).Seconds()
}

// IsAtRisk reports whether more than warnThresholdPct of the SLA budget has
// elapsed.
func IsAtRisk(deadline, now time.Time, warnThresholdPct, slaSeconds int) bool {
	remaining := RemainingSeconds(deadline, now)
	thresholdRemaining := float64(slaSeconds) * (1 - float64(warnThresholdPct)/100)
	return remaining <= thresholdRemaining
}

// IsBreached reports whether the deadline has passed.
func IsBreached(deadline, now time.Time) bool {
	return RemainingSeconds(deadline, now) <= 0
}
