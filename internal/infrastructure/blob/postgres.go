package blob

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"freelance-hub/internal/database"
)

// Postgres stores blobs in kv_blobs (see migrations/V1__create_kv_blobs.sql).
type Postgres struct {
	db database.DB
}

func NewPostgres(db database.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, name string) ([]byte, error) {
	var payload string
	err := p.db.QueryRow(ctx, `SELECT payload FROM kv_blobs WHERE name = $1`, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(payload), nil
}

func (p *Postgres) Put(ctx context.Context, name string, data []byte) error {
	_, err := p.db.Exec(ctx, `
INSERT INTO kv_blobs (name, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		name, string(data),
	)
	return err
}

func (p *Postgres) Delete(ctx context.Context, name string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM kv_blobs WHERE name = $1`, name)
	return err
}
