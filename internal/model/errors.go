package model

import "errors"

var (
	// Ticket resolution outcomes that degrade to an anonymous request
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketRevoked  = errors.New("ticket revoked")
	ErrTicketExpired  = errors.New("ticket expired")

	// Backend failure while resolving a ticket; never treated as anonymous
	ErrTicketStoreUnavailable = errors.New("ticket store unavailable")

	// User related errors
	ErrUserNotFound = errors.New("user not found")

	// Post related errors
	ErrPostNotFound = errors.New("post not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
