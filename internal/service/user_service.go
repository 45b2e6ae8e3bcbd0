package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-community/internal/model"
	"go-community/internal/repository"
	"go-community/pkg/apierror"
)

type ticketRepository interface {
	Insert(ctx context.Context, t *model.LoginTicket) error
	FindByTicket(ctx context.Context, ticket string) (model.LoginTicket, error)
	UpdateStatus(ctx context.Context, ticket string, status int) error
}

type userRepository interface {
	FindByID(ctx context.Context, id int) (model.User, error)
}

type userCache interface {
	GetUser(ctx context.Context, id int) (model.User, error)
	SetUser(ctx context.Context, u model.User, ttl time.Duration) error
}

// UserService is the ticket store behind the login ticket interceptor.
// Tickets are always read from Postgres so a status change made there takes
// effect on the next request; user rows go through a Redis read-through
// cache. Any Postgres failure is reported as model.ErrTicketStoreUnavailable.
type UserService struct {
	tickets      ticketRepository
	users        userRepository
	cache        userCache
	userCacheTTL time.Duration
	now          func() time.Time
}

// NewUserService builds the store. cache may be nil to always read Postgres.
func NewUserService(tickets ticketRepository, users userRepository, cache userCache, userCacheTTL time.Duration) *UserService {
	return &UserService{
		tickets:      tickets,
		users:        users,
		cache:        cache,
		userCacheTTL: userCacheTTL,
		now:          time.Now,
	}
}

func (s *UserService) FindLoginTicket(ctx context.Context, ticket string) (model.LoginTicket, error) {
	t, err := s.tickets.FindByTicket(ctx, ticket)
	if errors.Is(err, model.ErrTicketNotFound) {
		return model.LoginTicket{}, err
	}
	if err != nil {
		return model.LoginTicket{}, fmt.Errorf("%w: %w", model.ErrTicketStoreUnavailable, err)
	}
	return t, nil
}

func (s *UserService) FindUserByID(ctx context.Context, id int) (model.User, error) {
	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, id)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			slog.Warn("user cache read failed; falling back to database", "user_id", id, "error", err)
		}
	}

	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, err
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %w", model.ErrTicketStoreUnavailable, err)
	}

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, u, s.userCacheTTL); err != nil {
			slog.Warn("user cache write failed", "user_id", id, "error", err)
		}
	}

	return u, nil
}

// IssueTicket creates a valid ticket for userID that expires after ttl.
func (s *UserService) IssueTicket(ctx context.Context, userID int, ttl time.Duration) (model.LoginTicket, error) {
	if ttl <= 0 {
		return model.LoginTicket{}, apierror.BadRequest("ticket ttl must be positive", ttl.String())
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return model.LoginTicket{}, err
	}

	t := model.LoginTicket{
		UserID:  userID,
		Ticket:  strings.ReplaceAll(uuid.NewString(), "-", ""),
		Status:  model.TicketStatusValid,
		Expired: s.now().Add(ttl),
	}
	if err := s.tickets.Insert(ctx, &t); err != nil {
		return model.LoginTicket{}, err
	}

	slog.Info("login ticket issued", "user_id", userID, "ticket_id", t.ID, "expired", t.Expired)
	return t, nil
}

// RevokeTicket marks ticket invalid.
func (s *UserService) RevokeTicket(ctx context.Context, ticket string) error {
	if strings.TrimSpace(ticket) == "" {
		return apierror.BadRequest("ticket is required", "ticket")
	}

	return s.tickets.UpdateStatus(ctx, ticket, model.TicketStatusRevoked)
}
