package session

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/zeebo/blake3"
)

// CookieSigner signs session ids with a keyed blake3 MAC so a visitor cannot pick
// another visitor's session id. Signed values look like "<id>.<mac>".
type CookieSigner struct {
	key []byte
}

// NewCookieSigner derives the MAC key from secret
func NewCookieSigner(secret string) *CookieSigner {
	key := blake3.Sum256([]byte(secret))
	return &CookieSigner{key: key[:]}
}

// Sign returns the cookie value for id
func (s *CookieSigner) Sign(id string) string {
	return id + "." + s.mac(id)
}

// Verify returns the session id from a signed value. ok is false for unsigned,
// malformed or tampered values.
func (s *CookieSigner) Verify(value string) (id string, ok bool) {
	i := strings.LastIndexByte(value, '.')
	if i <= 0 || i == len(value)-1 {
		return "", false
	}
	id, sig := value[:i], value[i+1:]
	if subtle.ConstantTimeCompare([]byte(sig), []byte(s.mac(id))) != 1 {
		return "", false
	}
	return id, true
}

func (s *CookieSigner) mac(id string) string {
	h, err := blake3.NewKeyed(s.key)
	if err != nil {
		// the key is always 32 bytes
		panic(err)
	}
	_, _ = h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
