package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-community/internal/model"
)

type recordedStats struct {
	uv    []string
	dau   []int
	uvErr error
}

func (s *recordedStats) RecordUV(_ context.Context, ip string, _ time.Time) error {
	s.uv = append(s.uv, ip)
	return s.uvErr
}

func (s *recordedStats) RecordDAU(_ context.Context, userID int, _ time.Time) error {
	s.dau = append(s.dau, userID)
	return nil
}

func TestDataRecorder(t *testing.T) {
	t.Parallel()

	stats := &recordedStats{}
	handler := DataRecorder(stats)(okHandler())

	anonymous := requestAs(nil)
	anonymous.RemoteAddr = "192.0.2.10:5000"
	handler.ServeHTTP(httptest.NewRecorder(), anonymous)

	loggedIn := requestAs(&model.User{ID: 42})
	loggedIn.RemoteAddr = "192.0.2.11:5000"
	handler.ServeHTTP(httptest.NewRecorder(), loggedIn)

	require.Equal(t, []string{"192.0.2.10", "192.0.2.11"}, stats.uv)
	require.Equal(t, []int{42}, stats.dau)
}

func TestDataRecorderFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()

	stats := &recordedStats{uvErr: errors.New("redis down")}
	rec := httptest.NewRecorder()
	DataRecorder(stats)(okHandler()).ServeHTTP(rec, requestAs(nil))

	require.Equal(t, http.StatusOK, rec.Code)
}
