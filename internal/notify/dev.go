package notify

import (
	"context"

	"github.com/trapadl/spicymarg-funnel/pkg/logger"
)

// Dev logs every notification instead of calling the CRM. Used when
// no API key is configured.
type Dev struct{}

func NewDev() *Dev { return &Dev{} }

func (d *Dev) UpsertContact(ctx context.Context, email string, attributes map[string]any, listIDs []int64) error {
	logger.InfoContext(ctx, "[DEV CRM] upsert contact",
		"email", email,
		"attributes", attributes,
		"list_ids", listIDs,
	)
	return nil
}

func (d *Dev) SendTransactional(ctx context.Context, templateID int64, to Recipient, params map[string]any) error {
	logger.InfoContext(ctx, "[DEV CRM] transactional message",
		"template_id", templateID,
		"to", to.Email,
		"params", params,
	)
	return nil
}

func (d *Dev) SendSMS(ctx context.Context, phone, text string) error {
	logger.InfoContext(ctx, "[DEV CRM] sms",
		"to", phone,
		"text", text,
	)
	return nil
}
