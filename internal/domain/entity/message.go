package entity

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrMalformedID reports a message id that does not carry a decodable
	// timestamp prefix.
	ErrMalformedID = errors.New("malformed message id")
)

// Author is the nested author record embedded in every message. InternalID
// is a store-internal field and must never reach clients.
type Author struct {
	InternalID string `json:"_id,omitempty"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// Message is a stored board message. The first 8 hex characters of ID encode
// the creation time in seconds since epoch, so downstream consumers can
// recover a creation time from the id alone. Revision is the store-internal
// version marker stripped on output.
type Message struct {
	ID       string `json:"id"`
	Author   Author `json:"author"`
	Text     string `json:"text"`
	Revision int    `json:"__v,omitempty"`
}

// NewMessageID builds a 24-char hex identifier whose leading 8 hex chars are
// the given time in seconds since epoch, followed by 8 random bytes.
func NewMessageID(t time.Time) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to the nanosecond clock rather than returning an error
		// from an id constructor.
		nano := t.UnixNano()
		for i := range buf {
			buf[i] = byte(nano >> (8 * i))
		}
	}
	return fmt.Sprintf("%08x%s", uint32(t.Unix()), hex.EncodeToString(buf))
}

// MessageTime recovers the creation time encoded in a message id. It fails
// with ErrMalformedID when the id is missing, shorter than 8 hex chars, or
// its prefix is not hexadecimal.
func MessageTime(id string) (time.Time, error) {
	if len(id) < 8 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	// ParseUint rejects sign characters, so exactly 8 hex digits pass.
	secs, err := strconv.ParseUint(id[:8], 16, 32)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}
