package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VisitRepo interface {
	// Exists reports whether a redemption is already recorded for the
	// pair. This is the authoritative idempotency check; stage alone
	// can be stale in the caller's hands.
	Exists(ctx context.Context, guestID string, visitNumber int) (bool, error)
}

type VisitRepoImpl struct{ pool *pgxpool.Pool }

func NewVisitRepo(pool *pgxpool.Pool) *VisitRepoImpl { return &VisitRepoImpl{pool: pool} }

func (r *VisitRepoImpl) Exists(ctx context.Context, guestID string, visitNumber int) (bool, error) {
	const q = `SELECT EXISTS (
  SELECT 1 FROM visits WHERE guest_id = $1 AND visit_number = $2
)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := r.pool.QueryRow(ctx, q, guestID, visitNumber).Scan(&exists)
	return exists, err
}
