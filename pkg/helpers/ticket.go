package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TicketManager signs and validates the short-lived tickets that let
// non-browser realtime clients open the channel with an identity. A ticket
// is not a session: it only proves who requested it, for its few seconds of
// validity.
type TicketManager struct {
	Secret []byte
	TTL    time.Duration
}

func NewTicketManager(secret string, ttl time.Duration) *TicketManager {
	return &TicketManager{Secret: []byte(secret), TTL: ttl}
}

type TicketClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (m *TicketManager) Generate(userID string) (string, time.Time, error) {
	exp := time.Now().Add(m.TTL)
	claims := &TicketClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

func (m *TicketManager) Parse(tokenStr string) (*TicketClaims, error) {
	claims := &TicketClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid ticket")
	}
	return claims, nil
}
