package jwtPkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndReadSessionClaim(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")

	token, exp, err := Sign(map[string]interface{}{SessionClaim: "abc"}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	sid, err := SessionIDFromToken(token, "JWT_ACCESS_TOKEN_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)
}

func TestSessionIDFromTokenRejects(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")

	expired, _, err := Sign(map[string]interface{}{SessionClaim: "abc"}, -time.Minute)
	require.NoError(t, err)
	_, err = SessionIDFromToken(expired, "JWT_ACCESS_TOKEN_SECRET")
	assert.Error(t, err)

	noClaim, _, err := Sign(map[string]interface{}{"other": "x"}, time.Hour)
	require.NoError(t, err)
	_, err = SessionIDFromToken(noClaim, "JWT_ACCESS_TOKEN_SECRET")
	assert.Error(t, err)

	_, err = SessionIDFromToken("garbage", "JWT_ACCESS_TOKEN_SECRET")
	assert.Error(t, err)

	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "rotated")
	valid, _, err := Sign(map[string]interface{}{SessionClaim: "abc"}, time.Hour)
	require.NoError(t, err)
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	_, err = SessionIDFromToken(valid, "JWT_ACCESS_TOKEN_SECRET")
	assert.Error(t, err)
}

func TestSignWithoutSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "")
	_, _, err := Sign(map[string]interface{}{SessionClaim: "abc"}, time.Hour)
	assert.Error(t, err)
}
