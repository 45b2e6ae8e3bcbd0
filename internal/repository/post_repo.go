package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-community/internal/model"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, user_id, title, content, type, status, created_at, comment_count, score`

func scanPost(row pgx.Row) (model.DiscussPost, error) {
	var p model.DiscussPost
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.Type, &p.Status, &p.CreatedAt, &p.CommentCount, &p.Score)
	return p, err
}

// List returns visible posts, pinned first. userID 0 lists every author.
func (r *PostRepository) List(ctx context.Context, userID int, offset int, limit int) ([]model.DiscussPost, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postColumns+`
		 FROM discuss_post
		 WHERE status <> $1 AND ($2 = 0 OR user_id = $2)
		 ORDER BY type DESC, created_at DESC
		 OFFSET $3 LIMIT $4`,
		model.PostStatusBlocked, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.DiscussPost, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Count(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM discuss_post
		 WHERE status <> $1 AND ($2 = 0 OR user_id = $2)`,
		model.PostStatusBlocked, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (r *PostRepository) Insert(ctx context.Context, p *model.DiscussPost) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO discuss_post (user_id, title, content, type, status, created_at, comment_count, score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		p.UserID, p.Title, p.Content, p.Type, p.Status, p.CreatedAt, p.CommentCount, p.Score).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int) (model.DiscussPost, error) {
	p, err := scanPost(r.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM discuss_post WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.DiscussPost{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.DiscussPost{}, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}
