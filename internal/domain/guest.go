package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Funnel stages. A guest only ever moves forward, one stage per
// successful verification or redemption.
const (
	StageSignedUp    = 0 // landing page signup recorded
	StageVerified    = 1 // phone verified, voucher claimable
	StageFirstVisit  = 2 // spicy margarita redeemed
	StageSecondVisit = 3 // icey margarita redeemed
	StageCompleted   = 4 // free cocktail redeemed, funnel done
)

type Guest struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Phone       string     `json:"phone"`
	DateOfBirth time.Time  `json:"-"`
	Stage       int        `json:"stage"`
	LastStageAt time.Time  `json:"last_stage_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (g *Guest) Completed() bool {
	return g.Stage >= StageCompleted
}

type Visit struct {
	ID          int64     `json:"id"`
	GuestID     string    `json:"guest_id"`
	VisitNumber int       `json:"visit_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// RedemptionResult is the authoritative post-transition snapshot.
// Callers must use these values for downstream notification, never
// whatever they held before the call.
type RedemptionResult struct {
	GuestID     string `json:"guest_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	NewStage    int    `json:"stage"`
	VisitNumber int    `json:"visit_number"`
}

type SignupRequest struct {
	Email       string `json:"email"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
}

type SignupResult struct {
	GuestID   string `json:"guest_id"`
	NewSignup bool   `json:"new_signup"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func (r *SignupRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
}

func (r *SignupRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.DateOfBirth == "" {
		return fmt.Errorf("date of birth is required")
	}
	if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
		return fmt.Errorf("date of birth must be YYYY-MM-DD")
	}
	return nil
}

// Age computes full years between the date of birth and now.
func Age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
