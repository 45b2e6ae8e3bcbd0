package handler

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"go-community/pkg/apierror"
)

// HealthCheck reports whether one backend is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	slices.Sort(names)

	status := map[string]string{}
	var failures []string
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status[name] = "unavailable"
			failures = append(failures, name+": "+err.Error())
			continue
		}
		status[name] = "ok"
	}

	if len(failures) > 0 {
		writeError(w, apierror.New("UNHEALTHY", "One or more backends are unavailable", strings.Join(failures, "; "), http.StatusServiceUnavailable))
		return
	}

	writeSuccess(w, http.StatusOK, status, nil)
}
