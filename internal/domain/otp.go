package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	OTPLength = 6
)

// OTPChallenge is the ephemeral record binding a dispatched code to a
// guest and phone number. It lives only in the challenge store; any
// resend supersedes it, successful verification consumes it.
type OTPChallenge struct {
	GuestID   string    `json:"guest_id"`
	CodeHash  string    `json:"code_hash"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type OTPRequest struct {
	GuestID string `json:"guest_id"`
	Phone   string `json:"phone"`
}

type OTPVerify struct {
	GuestID  string `json:"guest_id"`
	Code     string `json:"code"`
	FullName string `json:"full_name"`
}

var (
	otpCodeRegex = regexp.MustCompile(`^\d{6}$`)
	phoneRegex   = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
)

func (r *OTPRequest) Normalize() {
	r.GuestID = strings.TrimSpace(r.GuestID)
	r.Phone = CleanPhone(r.Phone)
}

func (r *OTPRequest) Validate() error {
	if r.GuestID == "" {
		return fmt.Errorf("guest id is required")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !phoneRegex.MatchString(r.Phone) {
		return fmt.Errorf("invalid phone number")
	}
	return nil
}

func (r *OTPVerify) Normalize() {
	r.GuestID = strings.TrimSpace(r.GuestID)
	r.Code = strings.TrimSpace(r.Code)
	r.FullName = strings.TrimSpace(r.FullName)
}

func (r *OTPVerify) Validate() error {
	if r.GuestID == "" {
		return fmt.Errorf("guest id is required")
	}
	if !otpCodeRegex.MatchString(r.Code) {
		return fmt.Errorf("code must be %d digits", OTPLength)
	}
	if len(r.FullName) < 2 {
		return fmt.Errorf("full name is required")
	}
	return nil
}

// CleanPhone strips spacing and punctuation people type into phone
// fields, keeping a leading plus.
func CleanPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone converts a local number to E.164 using the venue's
// country prefix: 04xx... becomes +614xx..., bare digits get the
// prefix, anything already + prefixed is kept.
func NormalizePhone(phone, countryCode string) string {
	cleaned := CleanPhone(phone)
	switch {
	case cleaned == "":
		return ""
	case strings.HasPrefix(cleaned, "+"):
		return cleaned
	case strings.HasPrefix(cleaned, "0"):
		return countryCode + cleaned[1:]
	default:
		return countryCode + cleaned
	}
}
