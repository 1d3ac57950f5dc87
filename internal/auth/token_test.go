package auth

import (
	"testing"
	"time"

	"github.com/Settj76/ecom/internal/pocketbase/pbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	token := pbtest.IssueToken("user123", time.Hour)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.ID)
	assert.Equal(t, "auth", claims.Type)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())

	_, err = ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenValid(t *testing.T) {
	now := time.Now()
	assert.True(t, TokenValid(pbtest.IssueToken("u", time.Hour), now))
	assert.False(t, TokenValid(pbtest.IssueToken("u", -time.Minute), now))
	assert.False(t, TokenValid(pbtest.IssueToken("u", time.Hour), now.Add(2*time.Hour)))
	assert.False(t, TokenValid("", now))
	assert.False(t, TokenValid("garbage", now))
}
