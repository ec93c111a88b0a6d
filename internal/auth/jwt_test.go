package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	token, err := IssueAccessToken("secret", "ops", "reports admin", time.Hour)
	require.NoError(t, err)

	claims, err := VerifyAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.True(t, claims.HasScope(ScopeReports))
	assert.False(t, claims.HasScope("billing"))

	_, err = VerifyAccessToken(token, "other")
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredAndEmpty(t *testing.T) {
	token, err := IssueAccessToken("secret", "ops", ScopeReports, -time.Minute)
	require.NoError(t, err)
	_, err = VerifyAccessToken(token, "secret")
	assert.Error(t, err)

	_, err = VerifyAccessToken("", "secret")
	assert.Error(t, err)

	_, err = IssueAccessToken("", "ops", ScopeReports, time.Hour)
	assert.Error(t, err)
}

func TestParseBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ParseBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ParseBearerToken("bearer abc"))
	assert.Empty(t, ParseBearerToken("Basic abc"))
	assert.Empty(t, ParseBearerToken("abc"))
}
