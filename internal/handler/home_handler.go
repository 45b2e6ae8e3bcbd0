package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-community/internal/identity"
	"go-community/internal/model"
	"go-community/pkg/apierror"
)

type postService interface {
	ListPosts(ctx context.Context, userID int, page int, limit int) ([]model.PostWithAuthor, *model.Meta, error)
	GetPost(ctx context.Context, id int) (model.PostWithAuthor, error)
	Publish(ctx context.Context, author model.User, title string, content string) (model.DiscussPost, error)
}

type HomeHandler struct {
	service postService
}

func NewHomeHandler(service postService) *HomeHandler {
	return &HomeHandler{service: service}
}

// Index renders one page of posts. Query params: page, limit, user.
func (h *HomeHandler) Index(_ http.ResponseWriter, r *http.Request) (*model.ModelAndView, error) {
	query := r.URL.Query()
	page := queryInt(query.Get("page"), 1)
	limit := queryInt(query.Get("limit"), 10)
	userID := queryInt(query.Get("user"), 0)

	posts, meta, err := h.service.ListPosts(r.Context(), userID, page, limit)
	if err != nil {
		return nil, err
	}

	return model.NewView("index").
		AddObject("posts", posts).
		AddObject("page", meta), nil
}

func (h *HomeHandler) Post(_ http.ResponseWriter, r *http.Request) (*model.ModelAndView, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return nil, apierror.BadRequest("post id must be a positive integer", "id")
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return model.NewView("site/discuss-detail").AddObject("post", post), nil
}

// Publish stores a post written by the logged-in user and redirects to it.
func (h *HomeHandler) Publish(_ http.ResponseWriter, r *http.Request) (*model.ModelAndView, error) {
	defer r.Body.Close()

	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		return nil, model.ErrUnauthorized
	}

	var payload model.PublishPostRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, apierror.BadRequest("invalid JSON body", "")
	}

	post, err := h.service.Publish(r.Context(), *user, payload.Title, payload.Content)
	if err != nil {
		return nil, err
	}

	return model.RedirectTo("/posts/" + strconv.Itoa(post.ID)), nil
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
