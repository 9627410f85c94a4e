package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const brevoBaseURL = "https://api.brevo.com/v3"

// Brevo talks to the Brevo REST API (contacts, transactional email,
// transactional SMS).
type Brevo struct {
	apiKey     string
	smsSender  string
	httpClient *http.Client
	baseURL    string
}

func NewBrevo(apiKey, smsSender string) *Brevo {
	return &Brevo{
		apiKey:    apiKey,
		smsSender: smsSender,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: brevoBaseURL,
	}
}

func (b *Brevo) UpsertContact(ctx context.Context, email string, attributes map[string]any, listIDs []int64) error {
	payload := map[string]any{
		"email":         email,
		"attributes":    attributes,
		"updateEnabled": true,
	}
	if len(listIDs) > 0 {
		payload["listIds"] = listIDs
	}
	return b.post(ctx, "/contacts", payload)
}

func (b *Brevo) SendTransactional(ctx context.Context, templateID int64, to Recipient, params map[string]any) error {
	name := to.Name
	if name == "" {
		name = to.Email
	}
	payload := map[string]any{
		"templateId": templateID,
		"to":         []map[string]string{{"email": to.Email, "name": name}},
		"params":     params,
		"headers":    map[string]string{"X-Mailin-custom": "trap-margarita-funnel"},
	}
	return b.post(ctx, "/smtp/email", payload)
}

func (b *Brevo) SendSMS(ctx context.Context, phone, text string) error {
	payload := map[string]any{
		"sender":         b.smsSender,
		"recipient":      phone,
		"content":        text,
		"type":           "marketing",
		"unicodeEnabled": true,
	}
	return b.post(ctx, "/transactionalSMS/send", payload)
}

func (b *Brevo) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal brevo payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build brevo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", b.apiKey)

	res, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("brevo %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		return fmt.Errorf("brevo %s: status=%d body=%s", path, res.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
