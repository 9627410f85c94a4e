package linktoken

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		guestID   string
		secondary string
	}{
		{"email secondary", "b7f9d2a1-3c4e-4f5a-9b8c-7d6e5f4a3b2c", "guest@example.com"},
		{"display name with spaces", "abc123", "Jane Citizen"},
		{"secondary containing separator", "abc123", "a|b|c"},
		{"secondary with url characters", "abc123", "name?&=+/#%"},
		{"unicode secondary", "abc123", "Zoë Müller"},
		{"empty secondary", "abc123", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := Encode(tc.guestID, tc.secondary)

			id, secondary, err := Decode(token)
			require.NoError(t, err)
			assert.Equal(t, tc.guestID, id)
			assert.Equal(t, tc.secondary, secondary)
		})
	}
}

func TestEncodeIsURLSafe(t *testing.T) {
	token := Encode("b7f9d2a1-3c4e-4f5a-9b8c-7d6e5f4a3b2c", "name?&=+/ #%|end")

	// The token must survive URL embedding without escaping.
	assert.Equal(t, token, url.QueryEscape(token))
	assert.Equal(t, token, url.PathEscape(token))
}

func TestDecodeMalformed(t *testing.T) {
	_, _, err := Decode("!!!not-base64!!!")
	assert.ErrorIs(t, err, ErrMalformed)

	// Decodes as base64 but has no separator.
	noSep := base64.RawURLEncoding.EncodeToString([]byte("just-an-id"))
	_, _, err = Decode(noSep)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeEmptyIdentifier(t *testing.T) {
	_, _, err := Decode(Encode("", "secondary"))
	assert.ErrorIs(t, err, ErrEmptyIdentifier)

	_, _, err = Decode(Encode("   ", "secondary"))
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
}

func TestDecodeAcceptsPaddedStdEncoding(t *testing.T) {
	// Tokens minted by the legacy front end used btoa (standard
	// alphabet with padding).
	legacy := base64.StdEncoding.EncodeToString([]byte("guest-1|guest@example.com"))

	id, secondary, err := Decode(legacy)
	require.NoError(t, err)
	assert.Equal(t, "guest-1", id)
	assert.Equal(t, "guest@example.com", secondary)
}
