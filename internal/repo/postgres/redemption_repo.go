package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trapadl/spicymarg-funnel/internal/domain"
)

// RedemptionRepo performs the confirm-visit transaction. Everything a
// successful redemption touches — visit row, stage, last_stage_at —
// commits or rolls back as one unit, so a crash can never leave the
// stage advanced without its visit row or vice versa.
type RedemptionRepo interface {
	ConfirmVisit(ctx context.Context, guestID string, visitNumber int) (*domain.RedemptionResult, error)
}

type RedemptionRepoImpl struct{ pool *pgxpool.Pool }

func NewRedemptionRepo(pool *pgxpool.Pool) *RedemptionRepoImpl {
	return &RedemptionRepoImpl{pool: pool}
}

func (r *RedemptionRepoImpl) ConfirmVisit(ctx context.Context, guestID string, visitNumber int) (*domain.RedemptionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.Transient("begin redemption transaction", err)
	}
	defer tx.Rollback(ctx)

	// Lock the guest row so concurrent redemptions for the same guest
	// serialize here; the UNIQUE(guest_id, visit_number) constraint
	// below is the backstop either way.
	var (
		email    string
		fullName string
		stage    int
	)
	err = tx.QueryRow(ctx,
		`SELECT email, full_name, stage FROM guests WHERE id = $1 FOR UPDATE`,
		guestID,
	).Scan(&email, &fullName, &stage)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrGuestNotFound
	}
	if err != nil {
		return nil, domain.Transient("load guest for redemption", err)
	}

	// Never trust the caller's idea of the stage: re-derive
	// eligibility from what is persisted right now.
	if stage != visitNumber {
		redeemed, err := visitExistsTx(ctx, tx, guestID, visitNumber)
		if err != nil {
			return nil, domain.Transient("check existing visit", err)
		}
		if redeemed {
			return nil, domain.ErrAlreadyRedeemed
		}
		return nil, domain.ErrStageMismatch
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO visits (guest_id, visit_number) VALUES ($1, $2)
ON CONFLICT (guest_id, visit_number) DO NOTHING`,
		guestID, visitNumber,
	)
	if err != nil {
		return nil, domain.Transient("insert visit", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrAlreadyRedeemed
	}

	newStage := visitNumber + 1
	if _, err := tx.Exec(ctx,
		`UPDATE guests SET stage = $2, last_stage_at = now() WHERE id = $1`,
		guestID, newStage,
	); err != nil {
		return nil, domain.Transient("advance guest stage", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Transient("commit redemption", err)
	}

	return &domain.RedemptionResult{
		GuestID:     guestID,
		FullName:    fullName,
		Email:       email,
		NewStage:    newStage,
		VisitNumber: visitNumber,
	}, nil
}

func visitExistsTx(ctx context.Context, tx pgx.Tx, guestID string, visitNumber int) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM visits WHERE guest_id = $1 AND visit_number = $2)`,
		guestID, visitNumber,
	).Scan(&exists)
	return exists, err
}
