package funnel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trapadl/spicymarg-funnel/internal/domain"
	"github.com/trapadl/spicymarg-funnel/internal/notify"
	"github.com/trapadl/spicymarg-funnel/pkg/config"
	"github.com/trapadl/spicymarg-funnel/pkg/linktoken"
	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

// CRMNotifier translates stage transitions into Brevo contact updates
// and transactional sends. Every method logs its own failures and
// returns nothing: by the time it runs the transition has committed.
type CRMNotifier struct {
	crm notify.Service
	cfg config.BrevoConfig
}

func NewCRMNotifier(crm notify.Service, cfg config.BrevoConfig) *CRMNotifier {
	return &CRMNotifier{crm: crm, cfg: cfg}
}

func (n *CRMNotifier) GuestSignedUp(ctx context.Context, guest *domain.Guest, newSignup bool) {
	token := linktoken.Encode(guest.ID, guest.Email)
	voucherLink := n.cfg.PublicBaseURL + "/voucher/" + token

	attrs := map[string]any{
		"STAGE":             guest.Stage,
		"LAST_STAGE_UPDATE": time.Now().Format(time.RFC3339),
		"GUEST_ID":          guest.ID,
		"DOB":               guest.DateOfBirth.Format("2006-01-02"),
		"VOUCHER_LINK":      voucherLink,
		"COUPON_LINK_PATH":  "",
	}
	if err := n.crm.UpsertContact(ctx, guest.Email, attrs, []int64{n.cfg.SignupListID}); err != nil {
		logger.ErrorContext(ctx, "Failed to upsert signup contact", "error", err, "guest_id", guest.ID)
	}

	to := notify.Recipient{Email: guest.Email}
	params := map[string]any{"VOUCHER_LINK": voucherLink}
	if err := n.crm.SendTransactional(ctx, n.cfg.VoucherTplID, to, params); err != nil {
		logger.ErrorContext(ctx, "Failed to send voucher email", "error", err, "guest_id", guest.ID, "new_signup", newSignup)
	}
}

func (n *CRMNotifier) VoucherClaimed(ctx context.Context, guest *domain.Guest) {
	attrs := map[string]any{
		"STAGE":             guest.Stage,
		"LAST_STAGE_UPDATE": time.Now().Format(time.RFC3339),
		"GUEST_ID":          guest.ID,
		"FULL_NAME":         guest.FullName,
		"FIRST_NAME":        firstName(guest.FullName),
		"SMS":               guest.Phone,
		"SMS_OPT_IN":        true,
	}
	if err := n.crm.UpsertContact(ctx, guest.Email, attrs, nil); err != nil {
		logger.ErrorContext(ctx, "Failed to update claimed contact", "error", err, "guest_id", guest.ID)
	}
}

func (n *CRMNotifier) VisitRedeemed(ctx context.Context, post *domain.RedemptionResult) {
	attrs := map[string]any{
		"STAGE":             post.NewStage,
		"LAST_STAGE_UPDATE": time.Now().Format(time.RFC3339),
		"GUEST_ID":          post.GuestID,
		"FULL_NAME":         post.FullName,
		"FIRST_NAME":        firstName(post.FullName),
	}

	if next, ok := domain.NextOffer(post.NewStage); ok {
		token := linktoken.Encode(post.GuestID, post.FullName)
		attrs["COUPON_LINK_PATH"] = fmt.Sprintf("%s/confirm/%s?type=%s", n.cfg.PublicBaseURL, token, next.Type)
		attrs["VISIT_TYPE_FOR_COUPON"] = string(next.Type)
		attrs["REVIEW_LINK"] = n.cfg.ReviewLink
	}

	completed := post.NewStage == domain.StageCompleted
	if completed {
		attrs["FUNNEL_COMPLETED"] = true
		attrs["COMPLETION_DATE"] = time.Now().Format("2006-01-02")
		attrs["COUPON_LINK_PATH"] = ""
		attrs["VISIT_TYPE_FOR_COUPON"] = ""
		attrs["REVIEW_LINK"] = ""
	}

	if err := n.crm.UpsertContact(ctx, post.Email, attrs, nil); err != nil {
		logger.ErrorContext(ctx, "Failed to update contact after redemption", "error", err, "guest_id", post.GuestID)
	}

	if completed {
		to := notify.Recipient{Email: post.Email, Name: post.FullName}
		params := map[string]any{
			"FIRST_NAME":  firstName(post.FullName),
			"REVIEW_LINK": n.cfg.ReviewLink,
		}
		if err := n.crm.SendTransactional(ctx, n.cfg.FinalTplID, to, params); err != nil {
			logger.ErrorContext(ctx, "Failed to send completion email", "error", err, "guest_id", post.GuestID)
		}
	}
}

func firstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
