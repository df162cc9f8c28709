package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken(t *testing.T) {
	secret := []byte("secret")

	tok, err := GenerateAccessToken("risk-desk", secret, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "risk-desk", claims.Subject)
	assert.NotEmpty(t, claims.ID)

	_, err = VerifyToken(tok, []byte("other"))
	assert.Error(t, err)

	expired, err := GenerateAccessToken("risk-desk", secret, -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(expired, secret)
	assert.Error(t, err)

	_, err = GenerateAccessToken("", secret, time.Hour)
	assert.Error(t, err)
}
