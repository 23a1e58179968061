package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// ValidStatus reports whether s is a known status value.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityNormal   TicketPriority = "Normal"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// ValidPriority reports whether p is a known priority value.
// Critical is valid here but is not offered at ticket creation.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Length ceilings for user-supplied ticket fields.
const (
	MaxTitleLen       = 160
	MaxDescriptionLen = 10000
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	RequesterID int64
	AssigneeID  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
