package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go-community/internal/identity"
	"go-community/internal/metrics"
	"go-community/internal/model"
)

const (
	DefaultTicketCookie = "ticket"

	// LoginUserKey is the view model key under which the resolved user is exposed.
	LoginUserKey = "loginUser"
)

// TicketStore is the lookup contract the interceptor needs. Implementations
// return model.ErrTicketNotFound and model.ErrUserNotFound for missing rows;
// any other error is a backend failure.
type TicketStore interface {
	FindLoginTicket(ctx context.Context, ticket string) (model.LoginTicket, error)
	FindUserByID(ctx context.Context, id int) (model.User, error)
}

// Outcome records how a request's ticket was resolved.
type Outcome string

const (
	OutcomeAuthenticated    Outcome = "authenticated"
	OutcomeNoTicket         Outcome = "no_ticket"
	OutcomeTicketNotFound   Outcome = "ticket_not_found"
	OutcomeTicketRevoked    Outcome = "ticket_revoked"
	OutcomeTicketExpired    Outcome = "ticket_expired"
	OutcomeUserNotFound     Outcome = "user_not_found"
	OutcomeStoreUnavailable Outcome = "store_unavailable"
)

// Anonymous reports whether the request proceeds without an identity.
func (o Outcome) Anonymous() bool {
	return o != OutcomeAuthenticated && o != OutcomeStoreUnavailable
}

type LoginTicketInterceptor struct {
	store      TicketStore
	cookieName string
	now        func() time.Time
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type LoginTicketOption func(*LoginTicketInterceptor)

func WithTicketCookie(name string) LoginTicketOption {
	return func(i *LoginTicketInterceptor) {
		if strings.TrimSpace(name) != "" {
			i.cookieName = name
		}
	}
}

func WithClock(now func() time.Time) LoginTicketOption {
	return func(i *LoginTicketInterceptor) {
		if now != nil {
			i.now = now
		}
	}
}

func WithMetrics(m *metrics.Metrics) LoginTicketOption {
	return func(i *LoginTicketInterceptor) {
		i.metrics = m
	}
}

func NewLoginTicketInterceptor(store TicketStore, opts ...LoginTicketOption) *LoginTicketInterceptor {
	i := &LoginTicketInterceptor{
		store:      store,
		cookieName: DefaultTicketCookie,
		now:        time.Now,
		tracer:     otel.Tracer("go-community/internal/middleware"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Handler gives every request its own identity holder, runs PreHandle before
// next and AfterCompletion once next has returned or panicked.
func (i *LoginTicketInterceptor) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(identity.WithHolder(r.Context(), identity.NewHolder()))
		defer i.AfterCompletion(r)

		if _, err := i.PreHandle(r); err != nil {
			slog.Error("login ticket resolution failed", "path", r.URL.Path, "error", err)
			writeError(w, http.StatusServiceUnavailable, "TICKET_STORE_UNAVAILABLE", "Authentication backend unavailable", "")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PreHandle resolves the ticket cookie and stores the owning user in the
// request's holder. Every anonymous outcome returns a nil error; only a
// failing store is reported, wrapped in model.ErrTicketStoreUnavailable.
func (i *LoginTicketInterceptor) PreHandle(r *http.Request) (Outcome, error) {
	user, outcome, err := i.resolve(r)
	i.metrics.ObserveTicketResolution(string(outcome))

	if err != nil {
		return outcome, err
	}

	if outcome == OutcomeAuthenticated {
		identity.FromContext(r.Context()).Set(user)
		annotateUserID(r.Context(), user.ID)
		slog.DebugContext(r.Context(), "login ticket resolved", "outcome", outcome, "user_id", user.ID)
		return outcome, nil
	}

	slog.DebugContext(r.Context(), "login ticket resolved", "outcome", outcome)
	return outcome, nil
}

// PostHandle exposes the current user to the view about to be rendered. It
// does nothing for anonymous requests and for redirects.
func (i *LoginTicketInterceptor) PostHandle(r *http.Request, mv *model.ModelAndView) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok || !mv.HasView() {
		return
	}
	mv.AddObject(LoginUserKey, user)
}

func (i *LoginTicketInterceptor) AfterCompletion(r *http.Request) {
	identity.FromContext(r.Context()).Clear()
}

func (i *LoginTicketInterceptor) resolve(r *http.Request) (model.User, Outcome, error) {
	cookie, err := r.Cookie(i.cookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return model.User{}, OutcomeNoTicket, nil
	}

	ctx, span := i.tracer.Start(r.Context(), "auth.resolve_ticket", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	user, outcome, err := i.lookup(ctx, strings.TrimSpace(cookie.Value))
	span.SetAttributes(attribute.String("auth.outcome", string(outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ticket store unavailable")
		return model.User{}, outcome, err
	}
	if outcome == OutcomeAuthenticated {
		span.SetAttributes(attribute.Int("auth.user_id", user.ID))
	}

	return user, outcome, nil
}

func (i *LoginTicketInterceptor) lookup(ctx context.Context, token string) (model.User, Outcome, error) {
	ticket, err := i.store.FindLoginTicket(ctx, token)
	if errors.Is(err, model.ErrTicketNotFound) {
		return model.User{}, OutcomeTicketNotFound, nil
	}
	if err != nil {
		return model.User{}, OutcomeStoreUnavailable, unavailable("find login ticket", err)
	}

	switch err := ticket.Validate(i.now()); {
	case errors.Is(err, model.ErrTicketRevoked):
		return model.User{}, OutcomeTicketRevoked, nil
	case errors.Is(err, model.ErrTicketExpired):
		return model.User{}, OutcomeTicketExpired, nil
	}

	user, err := i.store.FindUserByID(ctx, ticket.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, OutcomeUserNotFound, nil
	}
	if err != nil {
		return model.User{}, OutcomeStoreUnavailable, unavailable("find user by id", err)
	}

	return user, OutcomeAuthenticated, nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, model.ErrTicketStoreUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrTicketStoreUnavailable, err)
}
