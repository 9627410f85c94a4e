// Package funnel implements the stage-progression state machine: how
// a guest moves 0 through 4, what gates each transition, and what the
// outside world hears about it afterwards.
package funnel

import (
	"context"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/internal/repo/postgres"
	"github.com/trapadl/spicymarg-funnel/internal/repo/redisotp"
	"github.com/trapadl/spicymarg-funnel/pkg/config"
	"github.com/trapadl/spicymarg-funnel/pkg/events"
)

// StageNotifier receives post-transition state and translates it into
// CRM side effects. Implementations must swallow their own failures:
// the transition already committed and is the source of truth.
type StageNotifier interface {
	GuestSignedUp(ctx context.Context, guest *domain.Guest, newSignup bool)
	VoucherClaimed(ctx context.Context, guest *domain.Guest)
	VisitRedeemed(ctx context.Context, post *domain.RedemptionResult)
}

type Service struct {
	guests      postgres.GuestRepo
	visits      postgres.VisitRepo
	redemptions postgres.RedemptionRepo
	otps        redisotp.Store
	notifier    StageNotifier
	eventBus    events.Publisher
	config      *config.Config
	smsSender   SMSSender
}

// SMSSender is the slice of the notification port the OTP flow needs.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, text string) error
}

func NewService(
	guests postgres.GuestRepo,
	visits postgres.VisitRepo,
	redemptions postgres.RedemptionRepo,
	otps redisotp.Store,
	notifier StageNotifier,
	smsSender SMSSender,
	eventBus events.Publisher,
	cfg *config.Config,
) *Service {
	return &Service{
		guests:      guests,
		visits:      visits,
		redemptions: redemptions,
		otps:        otps,
		notifier:    notifier,
		smsSender:   smsSender,
		eventBus:    eventBus,
		config:      cfg,
	}
}

// GuestStatus looks a guest up for the voucher and confirm pages.
// Returns domain.ErrGuestNotFound when the id is unknown.
func (s *Service) GuestStatus(ctx context.Context, guestID string) (*domain.Guest, error) {
	guest, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return nil, domain.Transient("load guest", err)
	}
	if guest == nil {
		return nil, domain.ErrGuestNotFound
	}
	return guest, nil
}
