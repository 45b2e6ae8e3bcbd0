package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go-community/internal/identity"
)

// StatsRecorder is the write side of the site statistics.
type StatsRecorder interface {
	RecordUV(ctx context.Context, ip string, day time.Time) error
	RecordDAU(ctx context.Context, userID int, day time.Time) error
}

// DataRecorder counts every visitor toward UV and every logged-in user toward
// DAU. Recording failures are logged and never fail the request.
func DataRecorder(recorder StatsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()

			if err := recorder.RecordUV(r.Context(), extractClientIP(r), now); err != nil {
				slog.Warn("record uv failed", "error", err)
			}

			if user, ok := identity.UserFromContext(r.Context()); ok {
				if err := recorder.RecordDAU(r.Context(), user.ID, now); err != nil {
					slog.Warn("record dau failed", "user_id", user.ID, "error", err)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
