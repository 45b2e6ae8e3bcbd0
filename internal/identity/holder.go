// Package identity holds the authenticated user for a single inbound request.
//
// A Holder is created per request by the login ticket interceptor and attached
// to the request context, so any code running on behalf of that request can
// reach it without a shared map. The interceptor clears it when the request
// completes.
package identity

import (
	"context"
	"sync/atomic"

	"go-community/internal/model"
)

type holderContextKey struct{}

// Holder is a single "current user" slot. The zero value is empty and ready
// to use. All methods are safe on a nil *Holder, which behaves as empty.
type Holder struct {
	user atomic.Pointer[model.User]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set stores a copy of user, replacing any previous value.
func (h *Holder) Set(user model.User) {
	if h == nil {
		return
	}
	h.user.Store(&user)
}

func (h *Holder) Get() (*model.User, bool) {
	if h == nil {
		return nil, false
	}
	user := h.user.Load()
	if user == nil {
		return nil, false
	}
	snapshot := *user
	return &snapshot, true
}

func (h *Holder) Clear() {
	if h == nil {
		return
	}
	h.user.Store(nil)
}

func WithHolder(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, holderContextKey{}, h)
}

// FromContext returns the request's holder, or nil outside of an
// intercepted request.
func FromContext(ctx context.Context) *Holder {
	if ctx == nil {
		return nil
	}
	h, _ := ctx.Value(holderContextKey{}).(*Holder)
	return h
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	return FromContext(ctx).Get()
}
