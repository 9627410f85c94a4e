package admin

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/pkg/auth"
	"github.com/trapadl/spicymarg-funnel/pkg/config"
)

type fakeMetricsRepo struct {
	rows        []domain.MonthlyMetrics
	manual      []time.Time
	counts      []*domain.MonthlyMetrics
	deleted     []time.Time
	created     int
	verified    int
	visitCounts map[int]int
	stageCounts map[int]int
}

func (r *fakeMetricsRepo) List(ctx context.Context) ([]domain.MonthlyMetrics, error) {
	return r.rows, nil
}

func (r *fakeMetricsRepo) UpsertManual(ctx context.Context, month time.Time, adSpend, cogs, revenue float64) error {
	r.manual = append(r.manual, month)
	return nil
}

func (r *fakeMetricsRepo) UpsertCounts(ctx context.Context, m *domain.MonthlyMetrics) error {
	r.counts = append(r.counts, m)
	return nil
}

func (r *fakeMetricsRepo) Delete(ctx context.Context, month time.Time) error {
	r.deleted = append(r.deleted, month)
	return nil
}

func (r *fakeMetricsRepo) CountGuestsCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.created, nil
}

func (r *fakeMetricsRepo) CountGuestsVerifiedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return r.verified, nil
}

func (r *fakeMetricsRepo) CountVisitsBetween(ctx context.Context, visitNumber int, from, to time.Time) (int, error) {
	return r.visitCounts[visitNumber], nil
}

func (r *fakeMetricsRepo) StageCounts(ctx context.Context) (map[int]int, error) {
	return r.stageCounts, nil
}

func testService(t *testing.T, repo *fakeMetricsRepo) *Service {
	t.Helper()
	accessHash, err := argon2id.CreateHash("letmein", argon2id.DefaultParams)
	require.NoError(t, err)
	bartenderHash, err := argon2id.CreateHash("9999", argon2id.DefaultParams)
	require.NoError(t, err)

	cfg := &config.Config{
		Admin: config.AdminConfig{
			AccessCodeHash:    accessHash,
			BartenderCodeHash: bartenderHash,
			JWTSecret:         "test-secret",
			SessionTTL:        time.Hour,
		},
		Funnel: config.FunnelConfig{SMSCostPerVoucher: 0.1091},
	}
	return NewService(repo, cfg)
}

func TestLogin(t *testing.T) {
	svc := testService(t, &fakeMetricsRepo{})

	token, err := svc.Login(context.Background(), "letmein")
	require.NoError(t, err)

	claims, err := auth.Parse(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	_, err = svc.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestCheckBartenderCode(t *testing.T) {
	svc := testService(t, &fakeMetricsRepo{})

	assert.NoError(t, svc.CheckBartenderCode("9999"))
	assert.ErrorIs(t, svc.CheckBartenderCode("1234"), domain.ErrAccessDenied)
}

func TestFunnelStatsCountsReachedGuests(t *testing.T) {
	repo := &fakeMetricsRepo{stageCounts: map[int]int{
		0: 50, // signed up, never claimed
		1: 20,
		2: 10,
		3: 4,
		4: 2,
	}}
	svc := testService(t, repo)

	stats, err := svc.FunnelStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 5)

	// Reached counts are cumulative from the bottom of the funnel.
	assert.Equal(t, 86, stats[0].Count)
	assert.Equal(t, 36, stats[1].Count)
	assert.Equal(t, 16, stats[2].Count)
	assert.Equal(t, 6, stats[3].Count)
	assert.Equal(t, 2, stats[4].Count)

	assert.InDelta(t, 100.0, stats[0].ConversionRate, 0.01)
	assert.InDelta(t, 36.0/86.0*100, stats[1].ConversionRate, 0.01)
	assert.InDelta(t, 2.0/6.0*100, stats[4].ConversionRate, 0.01)
}

func TestFunnelStatsEmptyDatabase(t *testing.T) {
	svc := testService(t, &fakeMetricsRepo{stageCounts: map[int]int{}})

	stats, err := svc.FunnelStats(context.Background())
	require.NoError(t, err)
	for _, st := range stats {
		assert.Zero(t, st.Count)
		assert.Zero(t, st.ConversionRate)
	}
}

func TestParseMonth(t *testing.T) {
	month, err := ParseMonth("2026-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), month)

	_, err = ParseMonth("08/2026")
	assert.Error(t, err)
}

func TestSaveManualMetricsRejectsNegatives(t *testing.T) {
	repo := &fakeMetricsRepo{}
	svc := testService(t, repo)

	err := svc.SaveManualMetrics(context.Background(), time.Now(), -1, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, repo.manual)

	require.NoError(t, svc.SaveManualMetrics(context.Background(), time.Now(), 100, 50, 400))
	assert.Len(t, repo.manual, 1)
}

func TestAggregateMonth(t *testing.T) {
	repo := &fakeMetricsRepo{
		created:     120,
		verified:    40,
		visitCounts: map[int]int{1: 25, 2: 12, 3: 5},
	}
	svc := testService(t, repo)

	m, err := svc.AggregateMonth(context.Background(), time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), m.Month)
	assert.Equal(t, 120, m.NewLeads)
	assert.Equal(t, 40, m.VouchersClaimed)
	assert.Equal(t, 25, m.FirstVisits)
	assert.Equal(t, 12, m.SecondVisits)
	assert.Equal(t, 5, m.ThirdVisits)
	assert.InDelta(t, 40*0.1091, m.Stage1SMSCost, 0.0001)

	require.Len(t, repo.counts, 1)
	assert.Equal(t, m, repo.counts[0])
}
