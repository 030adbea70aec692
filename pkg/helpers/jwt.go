package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every verification failure. The cause is
// wrapped for logging but callers should only match on this sentinel.
var ErrInvalidToken = errors.New("invalid token")

// JWTManager issues and verifies HS256 session tokens.
// Tokens carry no exp claim; freshness comes from the server-side token list
// and the optional MaxAge window.
type JWTManager struct {
	Secret []byte
	// MaxAge rejects tokens issued longer ago than this. Zero disables the check.
	MaxAge time.Duration

	now func() time.Time
}

func NewJWTManager(secret string, maxAge time.Duration) *JWTManager {
	return &JWTManager{
		Secret: []byte(secret),
		MaxAge: maxAge,
		now:    time.Now,
	}
}

// Claims is the signed payload: owner id and issue time.
// The jti makes two tokens issued in the same second distinct.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID. The caller persists it in the user's token list.
func (m *JWTManager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(m.clock()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.Secret)
}

// Verify checks signature, shape and issue time and returns the claims.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.clock),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.UserID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidToken
	}
	if m.MaxAge > 0 && m.clock().Sub(claims.IssuedAt.Time) > m.MaxAge {
		return nil, fmt.Errorf("%w: issued more than %s ago", ErrInvalidToken, m.MaxAge)
	}
	return claims, nil
}

func (m *JWTManager) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}
