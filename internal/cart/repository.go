package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresSlots is a SlotStore backed by the cart_slots table.
type PostgresSlots struct {
	pool DBPool
}

func NewPostgresSlots(pool DBPool) *PostgresSlots {
	return &PostgresSlots{pool: pool}
}

func (r *PostgresSlots) Read(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := r.pool.QueryRow(ctx, `SELECT payload FROM cart_slots WHERE slot_key=$1`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(payload), nil
}

func (r *PostgresSlots) Write(ctx context.Context, key string, data []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_slots(slot_key, payload)
		VALUES($1, $2)
		ON CONFLICT (slot_key) DO UPDATE SET payload=EXCLUDED.payload, updated_at=now()
	`, key, string(data))
	return err
}
