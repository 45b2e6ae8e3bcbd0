package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"go-community/internal/config"
	"go-community/internal/handler"
	"go-community/internal/identity"
	"go-community/internal/metrics"
	"go-community/internal/middleware"
	"go-community/internal/model"
	"go-community/internal/service"
)

type memoryStore struct {
	mu      sync.Mutex
	tickets map[string]model.LoginTicket
	users   map[int]model.User
}

func (s *memoryStore) FindLoginTicket(_ context.Context, ticket string) (model.LoginTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticket]
	if !ok {
		return model.LoginTicket{}, model.ErrTicketNotFound
	}
	return t, nil
}

func (s *memoryStore) FindUserByID(_ context.Context, id int) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memoryStore) RevokeTicket(_ context.Context, ticket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticket]
	if !ok {
		return model.ErrTicketNotFound
	}
	t.Status = model.TicketStatusRevoked
	s.tickets[ticket] = t
	return nil
}

type emptyPosts struct{}

func (emptyPosts) ListPosts(_ context.Context, _ int, page int, limit int) ([]model.PostWithAuthor, *model.Meta, error) {
	return []model.PostWithAuthor{}, model.NewMeta(page, limit, 0), nil
}

func (emptyPosts) GetPost(context.Context, int) (model.PostWithAuthor, error) {
	return model.PostWithAuthor{}, model.ErrPostNotFound
}

func (emptyPosts) Publish(_ context.Context, author model.User, title string, content string) (model.DiscussPost, error) {
	return model.DiscussPost{ID: 1, UserID: author.ID, Title: title, Content: content}, nil
}

type postLister interface {
	ListPosts(ctx context.Context, userID int, page int, limit int) ([]model.PostWithAuthor, *model.Meta, error)
	GetPost(ctx context.Context, id int) (model.PostWithAuthor, error)
	Publish(ctx context.Context, author model.User, title string, content string) (model.DiscussPost, error)
}

// slowPosts blocks ListPosts until the request context is cancelled.
type slowPosts struct {
	emptyPosts
	sawUser  chan bool
	finished chan *identity.Holder
}

func (s slowPosts) ListPosts(ctx context.Context, _ int, _ int, _ int) ([]model.PostWithAuthor, *model.Meta, error) {
	_, ok := identity.UserFromContext(ctx)
	s.sawUser <- ok
	<-ctx.Done()
	s.finished <- identity.FromContext(ctx)
	return nil, nil, ctx.Err()
}

type testServer struct {
	handler http.Handler
	store   *memoryStore
	redis   *miniredis.Miniredis
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	return newTestServerWith(t, emptyPosts{}, 5*time.Second)
}

func newTestServerWith(t *testing.T, posts postLister, timeout time.Duration) testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	expires := time.Now().Add(time.Hour)
	store := &memoryStore{
		tickets: map[string]model.LoginTicket{
			"abc123": {UserID: 42, Ticket: "abc123", Expired: expires},
			"root":   {UserID: 1, Ticket: "root", Expired: expires},
		},
		users: map[int]model.User{
			42: {ID: 42, Username: "alice", Type: model.UserTypeOrdinary},
			1:  {ID: 1, Username: "admin", Type: model.UserTypeAdmin},
		},
	}

	cfg := &config.Config{
		RequestTimeout:   timeout,
		CORSOrigins:      []string{"*"},
		TicketCookieName: "ticket",
		MetricsEnabled:   true,
	}
	m := metrics.New()
	stats := service.NewDataService(client)
	interceptor := middleware.NewLoginTicketInterceptor(store, middleware.WithMetrics(m))

	h := New(cfg, Deps{Interceptor: interceptor, Stats: stats, Metrics: m}, Handlers{
		Home:   handler.NewHomeHandler(posts),
		Data:   handler.NewDataHandler(stats),
		Auth:   handler.NewAuthHandler(store, cfg.TicketCookieName),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() }}),
	})

	return testServer{handler: h, store: store, redis: mr, metrics: m}
}

func (s testServer) do(method string, target string, ticket string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.10:5000"
	if ticket != "" {
		req.AddCookie(&http.Cookie{Name: "ticket", Value: ticket})
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func viewModel(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Data model.ViewResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.Model
}

func TestIndexCarriesLoginUser(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/index", "abc123")
	require.Equal(t, http.StatusOK, rec.Code)
	loginUser, ok := viewModel(t, rec)["loginUser"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", loginUser["username"])

	rec = srv.do(http.MethodGet, "/index", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, viewModel(t, rec), "loginUser")

	rec = srv.do(http.MethodGet, "/index", "nope")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, viewModel(t, rec), "loginUser")
}

func TestAPIMe(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/api/me", "abc123").Code)
	require.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/api/me", "").Code)
}

func TestVersionGatedData(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodGet, "/v2/data", "root")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/v3/data", "root")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(http.MethodGet, "/v1/data", "root")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VERSION_TOO_LOW")

	rec = srv.do(http.MethodGet, "/latest/data", "root")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "VERSION_UNPARSABLE")

	require.Equal(t, http.StatusForbidden, srv.do(http.MethodGet, "/v2/data", "abc123").Code)
	require.Equal(t, http.StatusUnauthorized, srv.do(http.MethodGet, "/v2/data", "").Code)
}

func TestStatisticsAreRecorded(t *testing.T) {
	srv := newTestServer(t)

	srv.do(http.MethodGet, "/index", "abc123")
	srv.do(http.MethodGet, "/index", "")

	today := time.Now().Format("2006-01-02")
	rec := srv.do(http.MethodPost, "/v2/data/uv?start="+today+"&end="+today, "root")
	require.Equal(t, http.StatusOK, rec.Code)
	uv, ok := viewModel(t, rec)["uvResult"].(map[string]any)
	require.True(t, ok)
	require.InDelta(t, 1, uv["value"], 0)

	rec = srv.do(http.MethodPost, "/data/dau?start="+today+"&end="+today, "root")
	require.Equal(t, http.StatusOK, rec.Code)
	dau, ok := viewModel(t, rec)["dauResult"].(map[string]any)
	require.True(t, ok)
	require.InDelta(t, 2, dau["value"], 0)
}

func TestLogoutRevokesTicket(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/logout", "abc123")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	rec = srv.do(http.MethodGet, "/api/me", "abc123")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, http.StatusOK, srv.do(http.MethodGet, "/health", "").Code)

	srv.do(http.MethodGet, "/index", "abc123")
	rec := srv.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `community_auth_ticket_resolutions_total{outcome="authenticated"}`))

	srv.redis.Close()
	require.Equal(t, http.StatusServiceUnavailable, srv.do(http.MethodGet, "/health", "").Code)
}

func TestTimedOutRequestDoesNotLeakIdentity(t *testing.T) {
	posts := slowPosts{sawUser: make(chan bool, 1), finished: make(chan *identity.Holder, 1)}
	srv := newTestServerWith(t, posts, 50*time.Millisecond)

	rec := srv.do(http.MethodGet, "/index", "abc123")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "REQUEST_TIMEOUT")
	require.True(t, <-posts.sawUser, "the slow handler ran as alice")

	holder := <-posts.finished
	_, ok := holder.Get()
	require.False(t, ok, "holder of the timed-out request is cleared")

	rec = srv.do(http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(http.MethodGet, "/api/me", "abc123")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"username":"alice"`)
}
