package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewMessageIDEncodesCreationTime(t *testing.T) {
	req := require.New(t)
	at := time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)

	id := NewMessageID(at)

	req.Len(id, 24)
	decoded, err := MessageTime(id)
	req.NoError(err)
	req.Equal(at, decoded)
}

func TestMessageTimeDecodesKnownPrefix(t *testing.T) {
	req := require.New(t)

	// 0x5f3759df = 1597397471 seconds since epoch
	decoded, err := MessageTime("5f3759df0011223344556677")
	req.NoError(err)
	req.Equal(time.Unix(0x5f3759df, 0).UTC(), decoded)
}

func TestMessageTimeRejectsMalformedIDs(t *testing.T) {
	cases := map[string]string{
		"empty":    "",
		"short":    "5f37",
		"nonhex":   "zzzzzzzz0011223344556677",
		"partial":  "5f3759g f",
		"negative": "-f3759df0011223344556677",
		"signed":   "+f3759df0011223344556677",
	}
	for name, id := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := MessageTime(id)
			require.ErrorIs(t, err, ErrMalformedID)
		})
	}
}
