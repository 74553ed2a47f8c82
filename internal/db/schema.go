package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const contactMessagesDDL = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id          UUID PRIMARY KEY,
	name        VARCHAR(100)  NOT NULL,
	email       VARCHAR(255)  NOT NULL,
	subject     VARCHAR(200)  NOT NULL,
	message     VARCHAR(1000) NOT NULL,
	created_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
)`

// EnsureSchema creates the contact_messages table when it is missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, contactMessagesDDL)
	return err
}
