package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"go-community/internal/identity"
	"go-community/internal/model"
)

func requestAs(user *model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	holder := identity.NewHolder()
	if user != nil {
		holder.Set(*user)
	}
	return req.WithContext(identity.WithHolder(req.Context(), holder))
}

func TestRequireLogin(t *testing.T) {
	t.Parallel()

	handler := RequireLogin(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), `"UNAUTHORIZED"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(&model.User{ID: 1}))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code, "requests outside the interceptor are anonymous")
}

func TestRequireUserType(t *testing.T) {
	t.Parallel()

	handler := RequireUserType(model.UserTypeAdmin)(okHandler())

	cases := []struct {
		name string
		user *model.User
		want int
	}{
		{name: "anonymous", user: nil, want: http.StatusUnauthorized},
		{name: "ordinary", user: &model.User{ID: 1, Type: model.UserTypeOrdinary}, want: http.StatusForbidden},
		{name: "moderator", user: &model.User{ID: 2, Type: model.UserTypeModerator}, want: http.StatusForbidden},
		{name: "admin", user: &model.User{ID: 3, Type: model.UserTypeAdmin}, want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestAs(tc.user))
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
