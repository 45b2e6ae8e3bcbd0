package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go-community/internal/model"
	"go-community/pkg/apierror"
)

const (
	maxTitleLength = 100
	maxPageSize    = 50
)

type postRepository interface {
	List(ctx context.Context, userID int, offset int, limit int) ([]model.DiscussPost, error)
	Count(ctx context.Context, userID int) (int, error)
	Insert(ctx context.Context, p *model.DiscussPost) error
	FindByID(ctx context.Context, id int) (model.DiscussPost, error)
}

type authorRepository interface {
	FindByIDs(ctx context.Context, ids []int) (map[int]model.User, error)
}

type PostService struct {
	posts   postRepository
	authors authorRepository
}

func NewPostService(posts postRepository, authors authorRepository) *PostService {
	return &PostService{posts: posts, authors: authors}
}

// ListPosts returns one page of posts with their authors. userID 0 lists
// every author.
func (s *PostService) ListPosts(ctx context.Context, userID int, page int, limit int) ([]model.PostWithAuthor, *model.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = 10
	}

	total, err := s.posts.Count(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	meta := model.NewMeta(page, limit, total)
	posts, err := s.posts.List(ctx, userID, meta.Offset(), limit)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.withAuthors(ctx, posts)
	if err != nil {
		return nil, nil, err
	}

	return items, meta, nil
}

func (s *PostService) GetPost(ctx context.Context, id int) (model.PostWithAuthor, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return model.PostWithAuthor{}, err
	}
	if post.Status == model.PostStatusBlocked {
		return model.PostWithAuthor{}, model.ErrPostNotFound
	}

	items, err := s.withAuthors(ctx, []model.DiscussPost{post})
	if err != nil {
		return model.PostWithAuthor{}, err
	}
	return items[0], nil
}

func (s *PostService) Publish(ctx context.Context, author model.User, title string, content string) (model.DiscussPost, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" || content == "" {
		return model.DiscussPost{}, apierror.BadRequest("title and content are required", "")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return model.DiscussPost{}, apierror.BadRequest("title is too long", "title")
	}

	post := model.DiscussPost{
		UserID:    author.ID,
		Title:     title,
		Content:   content,
		Type:      model.PostTypeNormal,
		Status:    model.PostStatusNormal,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.posts.Insert(ctx, &post); err != nil {
		return model.DiscussPost{}, err
	}

	return post, nil
}

func (s *PostService) withAuthors(ctx context.Context, posts []model.DiscussPost) ([]model.PostWithAuthor, error) {
	ids := make([]int, 0, len(posts))
	seen := map[int]struct{}{}
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}

	authors, err := s.authors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]model.PostWithAuthor, 0, len(posts))
	for _, p := range posts {
		item := model.PostWithAuthor{Post: p}
		if author, ok := authors[p.UserID]; ok {
			item.Author = &author
		}
		items = append(items, item)
	}
	return items, nil
}
