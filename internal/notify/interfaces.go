package notify

import "context"

// Recipient addresses a transactional message.
type Recipient struct {
	Email string
	Name  string
}

// Service is the notification port: everything the funnel pushes to
// the CRM. Calls are best-effort from the funnel's point of view; a
// failed send never rolls back a state transition.
type Service interface {
	// UpsertContact creates or updates a CRM contact with the given
	// attributes, optionally subscribing it to lists.
	UpsertContact(ctx context.Context, email string, attributes map[string]any, listIDs []int64) error
	// SendTransactional dispatches a templated message.
	SendTransactional(ctx context.Context, templateID int64, to Recipient, params map[string]any) error
	// SendSMS dispatches a text to an E.164 phone number.
	SendSMS(ctx context.Context, phone, text string) error
}
