package model

import "slices"

type Status string

const (
	StatusNone      Status = ""
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

var transitions = map[Status][]Status{
	StatusNone:      {StatusPending},
	StatusPending:   {StatusPaid, StatusCancelled, StatusExpired, StatusFailed},
	StatusPaid:      {StatusConfirmed, StatusRefunded},
	StatusConfirmed: {StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// IsActive reports whether the status still holds the room's dates.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusPaid || s == StatusConfirmed
}

func (s Status) String() string {
	return string(s)
}

// ActiveStatuses lists the statuses that block a room's dates.
func ActiveStatuses() []string {
	return []string{StatusPending.String(), StatusPaid.String(), StatusConfirmed.String()}
}
