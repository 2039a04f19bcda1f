package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewService("test-secret", time.Hour)

	signed, err := svc.Issue(42, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestParseExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	signed, err := svc.Issue(1, "bob")
	require.NoError(t, err)

	_, err = svc.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseWrongSecret(t *testing.T) {
	issued, err := NewService("secret-a", time.Hour).Issue(1, "bob")
	require.NoError(t, err)

	_, err = NewService("secret-b", time.Hour).Parse(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	_, err := svc.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
