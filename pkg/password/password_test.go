package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("Sup3rSecret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.True(t, Verify("Sup3rSecret", hash))
	assert.False(t, Verify("wrongpass", hash))
	assert.False(t, Verify("Sup3rSecret", "not-a-hash"))
}

func TestCheckStrength(t *testing.T) {
	// An acceptable password fails no rules.
	assert.Empty(t, CheckStrength("Abcdef12"))

	// A hopeless password reports every rule it broke, not just the first.
	reasons := CheckStrength("abc")
	assert.Len(t, reasons, 3)
	assert.Contains(t, reasons, "password must be at least 8 characters long")
	assert.Contains(t, reasons, "password must contain an uppercase letter")
	assert.Contains(t, reasons, "password must contain a digit")

	assert.Equal(t,
		[]string{"password must contain a lowercase letter"},
		CheckStrength("ABCDEF12"))
	assert.Equal(t,
		[]string{"password must contain a digit"},
		CheckStrength("Abcdefgh"))
}
