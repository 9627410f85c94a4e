package funnel

import (
	"context"
	"time"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/pkg/events"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

const minSignupAge = 18

// Signup creates a stage-0 guest from email and date of birth. An
// email that already signed up gets its existing guest id back; the
// landing page form is safe to resubmit.
func (s *Service) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.SignupResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.ErrInvalidInput.WithCause(err)
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, domain.ErrInvalidInput.WithCause(err)
	}
	if domain.Age(dob, time.Now()) < minSignupAge {
		return nil, domain.ErrUnderage
	}

	existing, err := s.guests.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.Transient("find guest by email", err)
	}
	if existing != nil {
		// Re-deliver the voucher link to guests who have not claimed
		// it yet; guests further along just get their id back.
		if existing.Stage == domain.StageSignedUp {
			s.notifier.GuestSignedUp(ctx, existing, false)
		}
		return &domain.SignupResult{GuestID: existing.ID, NewSignup: false}, nil
	}

	guest, err := s.guests.Insert(ctx, req.Email, dob)
	if err != nil {
		return nil, domain.Transient("insert guest", err)
	}

	if err := s.eventBus.Publish(ctx, events.GuestSignedUp, events.GuestSignedUpEvent{
		GuestID:   guest.ID,
		Email:     guest.Email,
		NewSignup: true,
		CreatedAt: guest.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish signup event", "error", err, "guest_id", guest.ID)
	}

	s.notifier.GuestSignedUp(ctx, guest, true)

	return &domain.SignupResult{GuestID: guest.ID, NewSignup: true}, nil
}
