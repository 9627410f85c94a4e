// Package admin backs the dashboard: access-code login, the funnel
// conversion chart and the monthly profitability table.
package admin

import (
	"context"

	"github.com/alexedwards/argon2id"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/internal/repo/postgres"
	"github.com/trapadl/spicymarg-funnel/pkg/auth"
	"github.com/trapadl/spicymarg-funnel/pkg/config"
)

type Service struct {
	metrics postgres.MetricsRepo
	cfg     *config.Config
}

func NewService(metrics postgres.MetricsRepo, cfg *config.Config) *Service {
	return &Service{metrics: metrics, cfg: cfg}
}

// Login exchanges the shared dashboard access code for a session
// token. The code itself is never stored, only its argon2id hash.
func (s *Service) Login(ctx context.Context, accessCode string) (string, error) {
	match, err := argon2id.ComparePasswordAndHash(accessCode, s.cfg.Admin.AccessCodeHash)
	if err != nil {
		return "", domain.Transient("compare access code", err)
	}
	if !match {
		return "", domain.ErrAccessDenied
	}

	token, err := auth.NewAdminSession(s.cfg.Admin.JWTSecret, s.cfg.Admin.SessionTTL)
	if err != nil {
		return "", domain.Transient("issue session token", err)
	}
	return token, nil
}

// CheckBartenderCode verifies the code staff type on the confirm
// screen. It is a gate on a single redemption, not a session.
func (s *Service) CheckBartenderCode(code string) error {
	match, err := argon2id.ComparePasswordAndHash(code, s.cfg.Admin.BartenderCodeHash)
	if err != nil {
		return domain.Transient("compare bartender code", err)
	}
	if !match {
		return domain.ErrAccessDenied
	}
	return nil
}
