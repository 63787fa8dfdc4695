package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionToken is a bearer credential: a random secret plus an absolute
// expiry instant. It is stored inside the owning user's document and
// serialized as the single string "secret@<unix-millis>".
type SessionToken struct {
	Secret    string
	ExpiresAt time.Time
}

var errBadSessionToken = errors.New("malformed session token")

// ParseSessionToken parses the "secret@<unix-millis>" storage format.
func ParseSessionToken(s string) (SessionToken, error) {
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return SessionToken{}, errBadSessionToken
	}
	millis, err := strconv.ParseInt(s[at+1:], 10, 64)
	if err != nil {
		return SessionToken{}, errBadSessionToken
	}
	return SessionToken{
		Secret:    s[:at],
		ExpiresAt: time.UnixMilli(millis),
	}, nil
}

// String returns the storage format, "secret@<unix-millis>".
func (t SessionToken) String() string {
	return t.Secret + "@" + strconv.FormatInt(t.ExpiresAt.UnixMilli(), 10)
}

// Valid reports whether the token is unexpired at the given instant.
func (t SessionToken) Valid(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

func (t SessionToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SessionToken) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSessionToken(s)
	if err != nil {
		return fmt.Errorf("session token %q: %w", s, err)
	}
	*t = parsed
	return nil
}
