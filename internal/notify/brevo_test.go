package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	path    string
	apiKey  string
	payload map[string]any
}

func brevoTestServer(t *testing.T, status int) (*Brevo, *[]recordedRequest, func()) {
	t.Helper()
	var recorded []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		recorded = append(recorded, recordedRequest{
			path:    r.URL.Path,
			apiKey:  r.Header.Get("api-key"),
			payload: payload,
		})
		w.WriteHeader(status)
		w.Write([]byte(`{}`))
	}))

	b := NewBrevo("test-key", "Trap")
	b.baseURL = srv.URL
	return b, &recorded, srv.Close
}

func TestBrevoUpsertContact(t *testing.T) {
	b, recorded, done := brevoTestServer(t, http.StatusCreated)
	defer done()

	err := b.UpsertContact(context.Background(), "maria@example.com",
		map[string]any{"STAGE": 1}, []int64{7})
	require.NoError(t, err)

	require.Len(t, *recorded, 1)
	req := (*recorded)[0]
	assert.Equal(t, "/contacts", req.path)
	assert.Equal(t, "test-key", req.apiKey)
	assert.Equal(t, "maria@example.com", req.payload["email"])
	assert.Equal(t, true, req.payload["updateEnabled"])
	assert.Equal(t, []any{float64(7)}, req.payload["listIds"])
}

func TestBrevoUpsertContactOmitsEmptyLists(t *testing.T) {
	b, recorded, done := brevoTestServer(t, http.StatusNoContent)
	defer done()

	require.NoError(t, b.UpsertContact(context.Background(), "maria@example.com", nil, nil))
	_, hasLists := (*recorded)[0].payload["listIds"]
	assert.False(t, hasLists)
}

func TestBrevoSendTransactional(t *testing.T) {
	b, recorded, done := brevoTestServer(t, http.StatusCreated)
	defer done()

	err := b.SendTransactional(context.Background(), 49,
		Recipient{Email: "maria@example.com"},
		map[string]any{"VOUCHER_LINK": "https://example.com/v/abc"})
	require.NoError(t, err)

	req := (*recorded)[0]
	assert.Equal(t, "/smtp/email", req.path)
	assert.Equal(t, float64(49), req.payload["templateId"])

	// Recipient name falls back to the address.
	to := req.payload["to"].([]any)[0].(map[string]any)
	assert.Equal(t, "maria@example.com", to["name"])
}

func TestBrevoSendSMS(t *testing.T) {
	b, recorded, done := brevoTestServer(t, http.StatusCreated)
	defer done()

	require.NoError(t, b.SendSMS(context.Background(), "+61412345678", "your code is 123456"))

	req := (*recorded)[0]
	assert.Equal(t, "/transactionalSMS/send", req.path)
	assert.Equal(t, "Trap", req.payload["sender"])
	assert.Equal(t, "+61412345678", req.payload["recipient"])
}

func TestBrevoErrorIncludesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":"invalid_parameter"}`))
	}))
	defer srv.Close()

	b := NewBrevo("test-key", "Trap")
	b.baseURL = srv.URL

	err := b.SendSMS(context.Background(), "bad", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
	assert.Contains(t, err.Error(), "invalid_parameter")
}
