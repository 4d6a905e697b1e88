package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionIDRoundTrip(t *testing.T) {
	token, err := SignSessionID("abc-123", "secret", time.Hour)
	require.NoError(t, err)

	sid, err := ParseSessionID(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", sid)
}

func TestParseSessionID_Rejects(t *testing.T) {
	valid, err := SignSessionID("abc-123", "secret", time.Hour)
	require.NoError(t, err)
	expired, err := SignSessionID("abc-123", "secret", -time.Minute)
	require.NoError(t, err)
	empty, err := SignSessionID("", "secret", time.Hour)
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{SessionID: "abc-123"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]struct {
		token  string
		secret string
	}{
		"wrong secret": {token: valid, secret: "other"},
		"expired":      {token: expired, secret: "secret"},
		"empty sid":    {token: empty, secret: "secret"},
		"garbage":      {token: "not.a.token", secret: "secret"},
		"alg none":     {token: none, secret: "secret"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSessionID(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidSessionToken)
		})
	}
}
