package admin

import (
	"context"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
)

// FunnelStats builds the conversion chart. Each bar counts guests who
// REACHED the stage, not who currently sit at it: a guest at stage 3
// still counts toward the stage 1 and 2 bars, which is what a funnel
// chart means.
func (s *Service) FunnelStats(ctx context.Context) ([]domain.FunnelStageStat, error) {
	atStage, err := s.metrics.StageCounts(ctx)
	if err != nil {
		return nil, domain.Transient("load stage counts", err)
	}

	stats := make([]domain.FunnelStageStat, 0, domain.StageCompleted+1)
	for stage := domain.StageSignedUp; stage <= domain.StageCompleted; stage++ {
		reached := 0
		for at := stage; at <= domain.StageCompleted; at++ {
			reached += atStage[at]
		}

		stat := domain.FunnelStageStat{
			Stage:     stage,
			StageName: domain.StageNames[stage],
			Count:     reached,
		}
		if stage == domain.StageSignedUp {
			if reached > 0 {
				stat.ConversionRate = 100
			}
		} else if prev := stats[stage-1].Count; prev > 0 {
			stat.ConversionRate = float64(reached) / float64(prev) * 100
		}
		stats = append(stats, stat)
	}
	return stats, nil
}
