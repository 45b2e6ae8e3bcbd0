package model

import "time"

const (
	TicketStatusValid   = 0
	TicketStatusRevoked = 1
)

// LoginTicket is the server-side record behind the "ticket" cookie.
type LoginTicket struct {
	ID      int64     `json:"id"`
	UserID  int       `json:"user_id"`
	Ticket  string    `json:"ticket"`
	Status  int       `json:"status"`
	Expired time.Time `json:"expired"`
}

// Validate reports why the ticket cannot authenticate a request at now,
// or nil when it can.
func (t LoginTicket) Validate(now time.Time) error {
	if t.Status != TicketStatusValid {
		return ErrTicketRevoked
	}
	if !now.Before(t.Expired) {
		return ErrTicketExpired
	}
	return nil
}
