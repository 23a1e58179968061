package domain

import "time"

// SLAState classifies ticket age against its priority threshold.
type SLAState string

const (
	SLAOnTime  SLAState = "OnTime"
	SLAAtRisk  SLAState = "AtRisk"
	SLAOverdue SLAState = "Overdue"
)

// slaThresholds maps priority to the response window in hours.
var slaThresholds = map[TicketPriority]time.Duration{
	TicketPriorityLow:      72 * time.Hour,
	TicketPriorityNormal:   24 * time.Hour,
	TicketPriorityHigh:     4 * time.Hour,
	TicketPriorityCritical: 1 * time.Hour,
}

// SLAThreshold returns the response window for a priority. Unknown
// priorities fall back to the Normal window.
func SLAThreshold(p TicketPriority) time.Duration {
	if t, ok := slaThresholds[p]; ok {
		return t
	}
	return slaThresholds[TicketPriorityNormal]
}

// SLA derives the on-time state of the ticket at the given instant.
// The state is never persisted; it is recomputed on every read.
func (t *Ticket) SLA(now time.Time) SLAState {
	elapsed := now.Sub(t.CreatedAt)
	threshold := SLAThreshold(t.Priority)
	switch {
	case elapsed <= threshold:
		return SLAOnTime
	case elapsed <= threshold+threshold/2:
		return SLAAtRisk
	default:
		return SLAOverdue
	}
}
