package funnel

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/pkg/events"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

// RequestCode dispatches a fresh verification code to the guest's
// phone. Calling it again supersedes the previous challenge, so the
// resend button reuses this path as-is.
func (s *Service) RequestCode(ctx context.Context, req *domain.OTPRequest) error {
	req.Normalize()
	req.Phone = domain.NormalizePhone(req.Phone, s.config.Funnel.DefaultCountryCode)
	if err := req.Validate(); err != nil {
		return domain.ErrInvalidInput.WithCause(err)
	}

	guest, err := s.guests.GetByID(ctx, req.GuestID)
	if err != nil {
		return domain.Transient("load guest", err)
	}
	if guest == nil {
		return domain.ErrGuestNotFound
	}
	if guest.Stage != domain.StageSignedUp {
		return domain.ErrStageMismatch
	}

	code, err := generateCode()
	if err != nil {
		return domain.Transient("generate otp code", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return domain.Transient("hash otp code", err)
	}

	challenge := &domain.OTPChallenge{
		GuestID:   guest.ID,
		CodeHash:  string(hash),
		Phone:     req.Phone,
		ExpiresAt: time.Now().Add(s.config.Funnel.OTPValidity),
	}
	if err := s.otps.Put(ctx, challenge, s.config.Funnel.OTPValidity); err != nil {
		return domain.Transient("store otp challenge", err)
	}

	text := fmt.Sprintf(
		"Your Spicy Marg code is %s. Valid for %d minutes only. Reply STOP to opt out.",
		code, int(s.config.Funnel.OTPValidity.Minutes()),
	)
	if err := s.smsSender.SendSMS(ctx, req.Phone, text); err != nil {
		return domain.Transient("send otp sms", err)
	}

	logger.InfoContext(ctx, "OTP dispatched", "guest_id", guest.ID)
	return nil
}

// VerifyCode checks the submitted code against the live challenge and,
// on success, performs the 0->1 transition: the guest's name and phone
// are recorded and verified_at is set. The challenge is consumed so
// the code cannot be replayed.
func (s *Service) VerifyCode(ctx context.Context, req *domain.OTPVerify) (*domain.Guest, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.ErrInvalidInput.WithCause(err)
	}

	challenge, err := s.otps.Get(ctx, req.GuestID)
	if err != nil {
		return nil, domain.Transient("load otp challenge", err)
	}
	if challenge == nil || challenge.Expired(time.Now()) {
		return nil, domain.ErrInvalidOTP
	}
	if bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(req.Code)) != nil {
		return nil, domain.ErrInvalidOTP
	}

	now := time.Now()
	guest, err := s.guests.MarkVerified(ctx, req.GuestID, req.FullName, challenge.Phone, now)
	if err != nil {
		return nil, domain.Transient("mark guest verified", err)
	}
	if guest == nil {
		// The conditional update did not fire: either the guest is
		// gone or already past stage 0.
		existing, err := s.guests.GetByID(ctx, req.GuestID)
		if err != nil {
			return nil, domain.Transient("load guest", err)
		}
		if existing == nil {
			return nil, domain.ErrGuestNotFound
		}
		return nil, domain.ErrStageMismatch
	}

	if err := s.otps.Consume(ctx, req.GuestID); err != nil {
		logger.WarnContext(ctx, "Failed to consume OTP challenge", "error", err, "guest_id", guest.ID)
	}

	if err := s.eventBus.Publish(ctx, events.VoucherClaimed, events.VoucherClaimedEvent{
		GuestID:    guest.ID,
		Email:      guest.Email,
		Phone:      guest.Phone,
		VerifiedAt: now,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish voucher claimed event", "error", err, "guest_id", guest.ID)
	}

	s.notifier.VoucherClaimed(ctx, guest)

	return guest, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
