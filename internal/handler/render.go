package handler

import (
	"net/http"

	"go-community/internal/model"
)

// PageFunc is a handler that produces a view instead of writing the response
// itself. Returning an error renders the JSON error envelope.
type PageFunc func(w http.ResponseWriter, r *http.Request) (*model.ModelAndView, error)

// ViewInterceptor gets a chance to add to a model after the handler ran and
// before the view is rendered.
type ViewInterceptor interface {
	PostHandle(r *http.Request, mv *model.ModelAndView)
}

type Renderer struct {
	interceptors []ViewInterceptor
}

func NewRenderer(interceptors ...ViewInterceptor) *Renderer {
	return &Renderer{interceptors: interceptors}
}

// Page adapts fn to an http.HandlerFunc. Redirects are sent as 302 and skip
// the interceptors since there is no model to render.
func (rd *Renderer) Page(fn PageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mv, err := fn(w, r)
		if err != nil {
			writeError(w, err)
			return
		}

		if mv == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !mv.HasView() {
			http.Redirect(w, r, mv.Redirect, http.StatusFound)
			return
		}

		for _, interceptor := range rd.interceptors {
			interceptor.PostHandle(r, mv)
		}

		if mv.Model == nil {
			mv.Model = map[string]any{}
		}
		writeSuccess(w, http.StatusOK, model.ViewResponse{View: mv.View, Model: mv.Model}, nil)
	}
}
