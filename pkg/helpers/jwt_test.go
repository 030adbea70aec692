package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_IssueAndVerify(t *testing.T) {
	m := NewJWTManager("super-secret", 0)

	tok, err := m.Issue("user-123")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.NotNil(t, claims.IssuedAt)
	assert.Nil(t, claims.ExpiresAt)
}

func TestJWTManager_IssueIsUniquePerCall(t *testing.T) {
	m := NewJWTManager("k", 0)

	a, err := m.Issue("u1")
	require.NoError(t, err)
	b, err := m.Issue("u1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestJWTManager_IssueRejectsEmptyID(t *testing.T) {
	_, err := NewJWTManager("k", 0).Issue("")
	assert.Error(t, err)
}

func TestJWTManager_VerifyFailures(t *testing.T) {
	m := NewJWTManager("right-secret", 0)
	good, err := m.Issue("u1")
	require.NoError(t, err)

	other, err := NewJWTManager("wrong-secret", 0).Issue("u1")
	require.NoError(t, err)

	future := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	futureTok, err := future.SignedString(m.Secret)
	require.NoError(t, err)

	noID := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
	})
	noIDTok, err := noID.SignedString(m.Secret)
	require.NoError(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
	})
	hs512Tok, err := hs512.SignedString(m.Secret)
	require.NoError(t, err)

	cases := map[string]string{
		"malformed":       "not.a.jwt",
		"empty":           "",
		"wrong secret":    other,
		"tampered":        good + "x",
		"issued future":   futureTok,
		"missing user id": noIDTok,
		"other algorithm": hs512Tok,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTManager_MaxAge(t *testing.T) {
	m := NewJWTManager("k", time.Hour)
	issued := time.Now()
	m.now = func() time.Time { return issued }

	tok, err := m.Issue("u1")
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(30 * time.Minute) }
	_, err = m.Verify(tok)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
