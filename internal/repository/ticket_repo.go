package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-community/internal/model"
)

// LoginTicketRepository maps the login_ticket table. Rows are only ever
// inserted or have their status changed.
type LoginTicketRepository struct {
	pool *pgxpool.Pool
}

func NewLoginTicketRepository(pool *pgxpool.Pool) *LoginTicketRepository {
	return &LoginTicketRepository{pool: pool}
}

func (r *LoginTicketRepository) Insert(ctx context.Context, t *model.LoginTicket) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO login_ticket (user_id, ticket, status, expired)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		t.UserID, t.Ticket, t.Status, t.Expired).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert login ticket: %w", err)
	}
	return nil
}

func (r *LoginTicketRepository) FindByTicket(ctx context.Context, ticket string) (model.LoginTicket, error) {
	var t model.LoginTicket
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, ticket, status, expired
		 FROM login_ticket WHERE ticket = $1`, ticket).
		Scan(&t.ID, &t.UserID, &t.Ticket, &t.Status, &t.Expired)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.LoginTicket{}, model.ErrTicketNotFound
	}
	if err != nil {
		return model.LoginTicket{}, fmt.Errorf("find login ticket: %w", err)
	}
	return t, nil
}

func (r *LoginTicketRepository) UpdateStatus(ctx context.Context, ticket string, status int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE login_ticket SET status = $2 WHERE ticket = $1`, ticket, status)
	if err != nil {
		return fmt.Errorf("update login ticket status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTicketNotFound
	}
	return nil
}
