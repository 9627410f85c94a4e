// Package linktoken encodes the guest identity carried inside voucher
// and confirmation links. The encoding is reversible obfuscation, not
// authorization: decoding a token proves nothing, eligibility is always
// re-derived from the guest's persisted stage.
package linktoken

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrMalformed means the token could not be decoded at all.
	ErrMalformed = errors.New("malformed link token")
	// ErrEmptyIdentifier means the token decoded but carried no guest id.
	ErrEmptyIdentifier = errors.New("link token has empty guest identifier")
)

const separator = "|"

// Encode packs a guest id and a secondary field (email for voucher
// links, display name for confirm links) into a URL-safe token.
func Encode(guestID, secondary string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(guestID + separator + secondary))
}

// Decode reverses Encode. The guest id may not contain the separator;
// the secondary field keeps any separators it contains.
func Decode(token string) (guestID, secondary string, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		// Links in old emails were minted with btoa, which emits
		// padded standard base64. Accept those too.
		raw, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", "", ErrMalformed
		}
	}

	id, rest, found := strings.Cut(string(raw), separator)
	if !found {
		return "", "", ErrMalformed
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", ErrEmptyIdentifier
	}

	return id, rest, nil
}
