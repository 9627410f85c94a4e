package funnel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/pkg/events"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

var (
	errEmptyGuestID   = errors.New("guest id is required")
	errBadVisitNumber = errors.New("visit number must be 1, 2 or 3")
)

// ConfirmVisit records visit N for the guest and advances the stage to
// N+1. The repository runs the gate and the insert in one transaction,
// so concurrent confirmations collapse to a single visit record; this
// layer validates input and fans out the post-commit side effects.
func (s *Service) ConfirmVisit(ctx context.Context, guestID string, visitNumber int) (*domain.RedemptionResult, error) {
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return nil, domain.ErrInvalidInput.WithCause(errEmptyGuestID)
	}
	if visitNumber < 1 || visitNumber > domain.StageCompleted-1 {
		return nil, domain.ErrInvalidInput.WithCause(errBadVisitNumber)
	}

	result, err := s.redemptions.ConfirmVisit(ctx, guestID, visitNumber)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.eventBus.Publish(ctx, events.VisitConfirmed, events.VisitConfirmedEvent{
		GuestID:     result.GuestID,
		Email:       result.Email,
		VisitNumber: result.VisitNumber,
		NewStage:    result.NewStage,
		ConfirmedAt: now,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish visit confirmed event", "error", err, "guest_id", result.GuestID)
	}

	if result.NewStage == domain.StageCompleted {
		if err := s.eventBus.Publish(ctx, events.FunnelCompleted, events.FunnelCompletedEvent{
			GuestID:     result.GuestID,
			Email:       result.Email,
			CompletedAt: now,
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to publish funnel completed event", "error", err, "guest_id", result.GuestID)
		}
	}

	s.notifier.VisitRedeemed(ctx, result)

	return result, nil
}
