package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSLAThresholds(t *testing.T) {
	assert.Equal(t, 72*time.Hour, SLAThreshold(TicketPriorityLow))
	assert.Equal(t, 24*time.Hour, SLAThreshold(TicketPriorityNormal))
	assert.Equal(t, 4*time.Hour, SLAThreshold(TicketPriorityHigh))
	assert.Equal(t, time.Hour, SLAThreshold(TicketPriorityCritical))

	// Unknown priorities get the Normal window.
	assert.Equal(t, 24*time.Hour, SLAThreshold(TicketPriority("Urgent")))
}

func TestSLAStateBands(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ticket := &Ticket{Priority: TicketPriorityHigh, CreatedAt: created}

	cases := []struct {
		name    string
		elapsed time.Duration
		want    SLAState
	}{
		{"fresh", 0, SLAOnTime},
		{"just inside window", 4 * time.Hour, SLAOnTime},
		{"just past window", 4*time.Hour + time.Minute, SLAAtRisk},
		{"at risk boundary", 6 * time.Hour, SLAAtRisk},
		{"past risk band", 6*time.Hour + time.Minute, SLAOverdue},
		{"long overdue", 48 * time.Hour, SLAOverdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ticket.SLA(created.Add(tc.elapsed)))
		})
	}
}

func TestSLAStateNeverImproves(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rank := map[SLAState]int{SLAOnTime: 0, SLAAtRisk: 1, SLAOverdue: 2}

	for _, priority := range []TicketPriority{TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityCritical} {
		ticket := &Ticket{Priority: priority, CreatedAt: created}
		prev := SLAOnTime
		for elapsed := time.Duration(0); elapsed <= 120*time.Hour; elapsed += 30 * time.Minute {
			state := ticket.SLA(created.Add(elapsed))
			assert.GreaterOrEqual(t, rank[state], rank[prev],
				"priority %s regressed from %s to %s at %s", priority, prev, state, elapsed)
			prev = state
		}
	}
}
