package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/impactfest/internal/domain/contact"
	"github.com/geocoder89/impactfest/internal/observability"
	"github.com/geocoder89/impactfest/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateMessage = errors.New("contact message already stored")

type ContactMessagesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewContactMessagesRepo(pool *pgxpool.Pool, prom *observability.Prom) *ContactMessagesRepo {
	return &ContactMessagesRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *ContactMessagesRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *ContactMessagesRepo) InsertContactMessage(ctx context.Context, m contact.Message) error {
	err := repo.observe("contact_messages.insert", func() error {
		_, err := repo.pool.Exec(ctx,
			`INSERT INTO contact_messages (id, name, email, subject, message, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.Name, m.Email, m.Subject, m.Message, m.CreatedAt,
		)
		return err
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateMessage
	}
	return err
}

// ListRecent returns up to limit messages, newest first, starting after the
// cursor when one is given.
func (repo *ContactMessagesRepo) ListRecent(ctx context.Context, limit int, after *utils.MessageCursor) ([]contact.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, name, email, subject, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC, id DESC
		LIMIT $1`
	args := []any{limit}
	if after != nil {
		query = `SELECT id, name, email, subject, message, created_at
			FROM contact_messages
			WHERE (created_at, id) < ($2, $3)
			ORDER BY created_at DESC, id DESC
			LIMIT $1`
		args = append(args, after.CreatedAt, after.ID)
	}

	out := make([]contact.Message, 0, limit)
	err := repo.observe("contact_messages.list_recent", func() error {
		rows, err := repo.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m contact.Message
			if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
