package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/pkg/linktoken"
)

// Signup handles POST /v1/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.funnel.Signup(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.NewSignup {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

type voucherResponse struct {
	GuestID  string `json:"guest_id"`
	Stage    int    `json:"stage"`
	Verified bool   `json:"verified"`
	FullName string `json:"full_name,omitempty"`
}

// Voucher handles GET /v1/voucher/{token}
// The token rides in the link emailed at signup; it resolves to the
// guest and tells the page whether the OTP step is still pending.
func (h *Handlers) Voucher(w http.ResponseWriter, r *http.Request) {
	guestID, _, err := linktoken.Decode(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid voucher link")
		return
	}

	guest, err := h.funnel.GuestStatus(r.Context(), guestID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, voucherResponse{
		GuestID:  guest.ID,
		Stage:    guest.Stage,
		Verified: guest.Stage >= domain.StageVerified,
		FullName: guest.FullName,
	})
}

// RequestOTP handles POST /v1/otp/request and POST /v1/otp/resend.
// A resend is just a new request; the fresh code supersedes the old.
func (h *Handlers) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.funnel.RequestCode(r.Context(), &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// VerifyOTP handles POST /v1/otp/verify
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPVerify
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	guest, err := h.funnel.VerifyCode(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, voucherResponse{
		GuestID:  guest.ID,
		Stage:    guest.Stage,
		Verified: true,
		FullName: guest.FullName,
	})
}

type confirmPreviewResponse struct {
	GuestID     string `json:"guest_id"`
	FullName    string `json:"full_name"`
	Stage       int    `json:"stage"`
	Offer       string `json:"offer"`
	Eligibility string `json:"eligibility"`
}

// ConfirmPreview handles GET /v1/confirm/{token}?type=
// The bartender screen shows who the guest is and whether the offer
// can be redeemed before asking for the staff code.
func (h *Handlers) ConfirmPreview(w http.ResponseWriter, r *http.Request) {
	guestID, _, err := linktoken.Decode(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offer link")
		return
	}

	offer, ok := domain.OfferByType(domain.OfferType(r.URL.Query().Get("type")))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown offer type")
		return
	}

	guest, err := h.funnel.GuestStatus(r.Context(), guestID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	verdict, err := h.funnel.Evaluate(r.Context(), offer, guest)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, confirmPreviewResponse{
		GuestID:     guest.ID,
		FullName:    guest.FullName,
		Stage:       guest.Stage,
		Offer:       string(offer.Type),
		Eligibility: verdict.String(),
	})
}

type confirmRequest struct {
	Type       string `json:"type"`
	AccessCode string `json:"access_code"`
}

// ConfirmRedeem handles POST /v1/confirm/{token}
// Staff enter the bartender code on the guest's phone; a valid code
// records the visit and advances the stage.
func (h *Handlers) ConfirmRedeem(w http.ResponseWriter, r *http.Request) {
	guestID, _, err := linktoken.Decode(chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offer link")
		return
	}

	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.admin.CheckBartenderCode(req.AccessCode); err != nil {
		writeDomainError(w, r, err)
		return
	}

	offer, ok := domain.OfferByType(domain.OfferType(req.Type))
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown offer type")
		return
	}

	result, err := h.funnel.ConfirmVisit(r.Context(), guestID, offer.VisitNumber)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
