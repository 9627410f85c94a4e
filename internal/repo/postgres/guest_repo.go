package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trapadl/spicymarg-funnel/internal/domain"
)

// GuestRepo is the guest side of the repository port. Stage mutation
// never happens here outside MarkVerified; redemptions go through
// RedemptionRepo's transaction.
type GuestRepo interface {
	Insert(ctx context.Context, email string, dob time.Time) (*domain.Guest, error)
	GetByID(ctx context.Context, id string) (*domain.Guest, error)
	FindByEmail(ctx context.Context, email string) (*domain.Guest, error)
	// MarkVerified performs the 0->1 transition: records full name,
	// phone and the verification timestamp in one statement,
	// conditional on the guest still being at stage 0. Returns nil
	// when the condition did not hold.
	MarkVerified(ctx context.Context, id, fullName, phone string, at time.Time) (*domain.Guest, error)
}

type GuestRepoImpl struct{ pool *pgxpool.Pool }

func NewGuestRepo(pool *pgxpool.Pool) *GuestRepoImpl { return &GuestRepoImpl{pool: pool} }

const guestCols = `id, email, full_name, phone, dob, stage, last_stage_at, verified_at, created_at`

func scanGuest(row pgx.Row) (*domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(
		&g.ID, &g.Email, &g.FullName, &g.Phone, &g.DateOfBirth,
		&g.Stage, &g.LastStageAt, &g.VerifiedAt, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuestRepoImpl) Insert(ctx context.Context, email string, dob time.Time) (*domain.Guest, error) {
	const q = `INSERT INTO guests (id, email, dob, stage, last_stage_at)
VALUES ($1, $2, $3, 0, now())
RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(r.pool.QueryRow(ctx, q, uuid.NewString(), email, dob))
}

func (r *GuestRepoImpl) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *GuestRepoImpl) FindByEmail(ctx context.Context, email string) (*domain.Guest, error) {
	const q = `SELECT ` + guestCols + ` FROM guests WHERE lower(email) = lower($1)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *GuestRepoImpl) MarkVerified(ctx context.Context, id, fullName, phone string, at time.Time) (*domain.Guest, error) {
	const q = `UPDATE guests
SET full_name = $2, phone = $3, stage = 1, last_stage_at = $4, verified_at = $4
WHERE id = $1 AND stage = 0
RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	g, err := scanGuest(r.pool.QueryRow(ctx, q, id, fullName, phone, at))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}
