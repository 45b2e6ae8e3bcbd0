package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go-community/internal/metrics"
	"go-community/internal/version"
)

// VersionGate wraps routes that declare a minimum API version.
type VersionGate struct {
	metrics *metrics.Metrics
}

func NewVersionGate(m *metrics.Metrics) *VersionGate {
	return &VersionGate{metrics: m}
}

// APIVersion is Require on a gate without metrics.
func APIVersion(minimum int) func(http.Handler) http.Handler {
	return NewVersionGate(nil).Require(minimum)
}

// Require rejects requests whose path carries no v<N>/ segment or a version
// below minimum. Accepted requests reach next unmodified.
func (g *VersionGate) Require(minimum int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.EscapedPath()
			requested, err := version.Check(path, minimum)

			var rejection *version.RejectionError
			if errors.As(err, &rejection) {
				g.observe(minimum, string(rejection.Reason))
				slog.Debug("api version rejected", "path", path, "reason", rejection.Reason, "requested", rejection.Requested, "minimum", minimum)
				writeError(w, http.StatusBadRequest, string(rejection.Reason), rejectionMessage(rejection), rejectionDetails(rejection))
				return
			}

			g.observe(minimum, "allowed")
			slog.Debug("api version accepted", "path", path, "requested", requested, "minimum", minimum)
			next.ServeHTTP(w, r)
		})
	}
}

func (g *VersionGate) observe(minimum int, result string) {
	if g == nil {
		return
	}
	g.metrics.ObserveVersionCheck(minimum, result)
}

func rejectionMessage(rejection *version.RejectionError) string {
	if rejection.Reason == version.ReasonUnparsable {
		return "Request path does not name an API version"
	}
	return "API version not supported by this endpoint"
}

func rejectionDetails(rejection *version.RejectionError) string {
	if rejection.Reason == version.ReasonUnparsable {
		return fmt.Sprintf("minimum=%d", rejection.Minimum)
	}
	return fmt.Sprintf("requested=%d minimum=%d", rejection.Requested, rejection.Minimum)
}
