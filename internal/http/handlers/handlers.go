// Package handlers wires the funnel and admin services to the public
// HTTP surface.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/pkg/auth"
	"github.com/trapadl/spicymarg-funnel/pkg/config"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

// FunnelService is what the guest-facing routes need from the funnel.
type FunnelService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.SignupResult, error)
	GuestStatus(ctx context.Context, guestID string) (*domain.Guest, error)
	RequestCode(ctx context.Context, req *domain.OTPRequest) error
	VerifyCode(ctx context.Context, req *domain.OTPVerify) (*domain.Guest, error)
	Evaluate(ctx context.Context, offer domain.Offer, guest *domain.Guest) (domain.Eligibility, error)
	ConfirmVisit(ctx context.Context, guestID string, visitNumber int) (*domain.RedemptionResult, error)
}

// AdminService is what the dashboard routes need.
type AdminService interface {
	Login(ctx context.Context, accessCode string) (string, error)
	CheckBartenderCode(code string) error
	FunnelStats(ctx context.Context) ([]domain.FunnelStageStat, error)
	ListMetrics(ctx context.Context) ([]domain.MonthlyMetrics, error)
	SaveManualMetrics(ctx context.Context, month time.Time, adSpend, cogs, revenue float64) error
	DeleteMetrics(ctx context.Context, month time.Time) error
	AggregateMonth(ctx context.Context, month time.Time) (*domain.MonthlyMetrics, error)
}

type Handlers struct {
	funnel FunnelService
	admin  AdminService
	config *config.Config
}

func New(funnel FunnelService, admin AdminService, cfg *config.Config) *Handlers {
	return &Handlers{funnel: funnel, admin: admin, config: cfg}
}

// RequireAdmin gates the dashboard routes on a valid session token.
func (h *Handlers) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.Parse(token, h.config.Admin.JWTSecret)
		if err != nil || claims.Role != "admin" {
			writeError(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Helper functions for common response patterns
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError translates the service error taxonomy to HTTP.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.ErrorContext(r.Context(), "Unclassified error", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch derr.Kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
		if errors.Is(err, domain.ErrAccessDenied) {
			status = http.StatusUnauthorized
		}
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindTransient:
		logger.ErrorContext(r.Context(), "Transient failure", "error", err)
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{
		"error": derr.Message,
		"code":  derr.Code,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
