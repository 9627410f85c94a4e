package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trapadl/spicymarg-funnel/internal/domain"
)

type MetricsRepo interface {
	List(ctx context.Context) ([]domain.MonthlyMetrics, error)
	// UpsertManual writes the hand-entered fields for a month without
	// touching aggregated counts.
	UpsertManual(ctx context.Context, month time.Time, adSpend, cogs, revenue float64) error
	// UpsertCounts writes the aggregated fields for a month without
	// touching the hand-entered ones.
	UpsertCounts(ctx context.Context, m *domain.MonthlyMetrics) error
	Delete(ctx context.Context, month time.Time) error

	CountGuestsCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountGuestsVerifiedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountVisitsBetween(ctx context.Context, visitNumber int, from, to time.Time) (int, error)
	StageCounts(ctx context.Context) (map[int]int, error)
}

type MetricsRepoImpl struct{ pool *pgxpool.Pool }

func NewMetricsRepo(pool *pgxpool.Pool) *MetricsRepoImpl { return &MetricsRepoImpl{pool: pool} }

const metricsCols = `month, new_leads, vouchers_claimed, first_visits, second_visits,
third_visits, stage1_sms_cost, ad_spend, cogs, revenue, updated_at`

func (r *MetricsRepoImpl) List(ctx context.Context) ([]domain.MonthlyMetrics, error) {
	const q = `SELECT ` + metricsCols + ` FROM monthly_metrics ORDER BY month DESC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthlyMetrics
	for rows.Next() {
		var m domain.MonthlyMetrics
		if err := rows.Scan(
			&m.Month, &m.NewLeads, &m.VouchersClaimed, &m.FirstVisits, &m.SecondVisits,
			&m.ThirdVisits, &m.Stage1SMSCost, &m.AdSpend, &m.COGS, &m.Revenue, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MetricsRepoImpl) UpsertManual(ctx context.Context, month time.Time, adSpend, cogs, revenue float64) error {
	const q = `INSERT INTO monthly_metrics (month, ad_spend, cogs, revenue, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (month) DO UPDATE SET
  ad_spend = EXCLUDED.ad_spend,
  cogs = EXCLUDED.cogs,
  revenue = EXCLUDED.revenue,
  updated_at = now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, month, adSpend, cogs, revenue)
	return err
}

func (r *MetricsRepoImpl) UpsertCounts(ctx context.Context, m *domain.MonthlyMetrics) error {
	const q = `INSERT INTO monthly_metrics
  (month, new_leads, vouchers_claimed, first_visits, second_visits, third_visits, stage1_sms_cost, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (month) DO UPDATE SET
  new_leads = EXCLUDED.new_leads,
  vouchers_claimed = EXCLUDED.vouchers_claimed,
  first_visits = EXCLUDED.first_visits,
  second_visits = EXCLUDED.second_visits,
  third_visits = EXCLUDED.third_visits,
  stage1_sms_cost = EXCLUDED.stage1_sms_cost,
  updated_at = now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q,
		m.Month, m.NewLeads, m.VouchersClaimed, m.FirstVisits, m.SecondVisits,
		m.ThirdVisits, m.Stage1SMSCost,
	)
	return err
}

func (r *MetricsRepoImpl) Delete(ctx context.Context, month time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, `DELETE FROM monthly_metrics WHERE month = $1`, month)
	return err
}

func (r *MetricsRepoImpl) CountGuestsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx,
		`SELECT count(*) FROM guests WHERE created_at >= $1 AND created_at < $2`,
		from, to)
}

// CountGuestsVerifiedBetween counts guests whose 0->1 transition
// happened in the window. verified_at is set exactly once, so a guest
// who progressed further in the same month still counts.
func (r *MetricsRepoImpl) CountGuestsVerifiedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.count(ctx,
		`SELECT count(*) FROM guests WHERE verified_at >= $1 AND verified_at < $2`,
		from, to)
}

func (r *MetricsRepoImpl) CountVisitsBetween(ctx context.Context, visitNumber int, from, to time.Time) (int, error) {
	return r.count(ctx,
		`SELECT count(*) FROM visits WHERE visit_number = $1 AND created_at >= $2 AND created_at < $3`,
		visitNumber, from, to)
}

func (r *MetricsRepoImpl) count(ctx context.Context, q string, args ...any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	err := r.pool.QueryRow(ctx, q, args...).Scan(&n)
	return n, err
}

func (r *MetricsRepoImpl) StageCounts(ctx context.Context) (map[int]int, error) {
	const q = `SELECT stage, count(*) FROM guests GROUP BY stage`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var stage, n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, err
		}
		counts[stage] = n
	}
	return counts, rows.Err()
}
