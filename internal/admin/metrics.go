package admin

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

// ParseMonth accepts the dashboard's YYYY-MM month key and pins it to
// the first instant of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	month, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be YYYY-MM")
	}
	return month.UTC(), nil
}

func (s *Service) ListMetrics(ctx context.Context) ([]domain.MonthlyMetrics, error) {
	rows, err := s.metrics.List(ctx)
	if err != nil {
		return nil, domain.Transient("list monthly metrics", err)
	}
	return rows, nil
}

// SaveManualMetrics records the hand-entered spend and revenue figures
// for a month. Aggregated counts for the same row are untouched.
func (s *Service) SaveManualMetrics(ctx context.Context, month time.Time, adSpend, cogs, revenue float64) error {
	if adSpend < 0 || cogs < 0 || revenue < 0 {
		return domain.ErrInvalidInput.WithCause(fmt.Errorf("amounts must not be negative"))
	}
	if err := s.metrics.UpsertManual(ctx, month, adSpend, cogs, revenue); err != nil {
		return domain.Transient("save manual metrics", err)
	}
	return nil
}

func (s *Service) DeleteMetrics(ctx context.Context, month time.Time) error {
	if err := s.metrics.Delete(ctx, month); err != nil {
		return domain.Transient("delete monthly metrics", err)
	}
	return nil
}

// AggregateMonth recomputes the counted columns for one month from the
// guests and visits tables and writes them back. Rerunning it is safe;
// it always derives from the source tables.
func (s *Service) AggregateMonth(ctx context.Context, month time.Time) (*domain.MonthlyMetrics, error) {
	from := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	m := domain.MonthlyMetrics{Month: from}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		m.NewLeads, err = s.metrics.CountGuestsCreatedBetween(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		m.VouchersClaimed, err = s.metrics.CountGuestsVerifiedBetween(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		m.FirstVisits, err = s.metrics.CountVisitsBetween(gctx, 1, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		m.SecondVisits, err = s.metrics.CountVisitsBetween(gctx, 2, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		m.ThirdVisits, err = s.metrics.CountVisitsBetween(gctx, 3, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.Transient("aggregate month", err)
	}

	// Each claimed voucher costs one verification SMS.
	m.Stage1SMSCost = float64(m.VouchersClaimed) * s.cfg.Funnel.SMSCostPerVoucher

	if err := s.metrics.UpsertCounts(ctx, &m); err != nil {
		return nil, domain.Transient("store aggregated metrics", err)
	}

	logger.InfoContext(ctx, "Monthly metrics aggregated",
		"month", from.Format("2006-01"),
		"new_leads", m.NewLeads,
		"vouchers_claimed", m.VouchersClaimed,
	)
	return &m, nil
}
