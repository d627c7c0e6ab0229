package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", h)

	assert.True(t, CheckPassword(h, "password"))
	assert.False(t, CheckPassword(h, "invalid_password"))
	assert.False(t, CheckPassword("not-a-hash", "password"))
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Sha256Hex("hello"))
	assert.Len(t, Sha256Hex("any token"), 64)
}
