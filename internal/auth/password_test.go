package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generated by werkzeug-compatible pbkdf2_hmac("sha256", "secret1", "Xq3bLm9Z", 1000)
const legacyHash = "pbkdf2:sha256:1000$Xq3bLm9Z$b32a4d4e9ad0498b363db47c7ae10dd8f245016d6be5dcdf3b0169a4321ed34e"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NotContains(t, hash, "secret1")

	again, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")

	assert.True(t, VerifyPassword(hash, "secret1"))
	assert.False(t, VerifyPassword(hash, "secret2"))
	assert.False(t, VerifyPassword(hash, ""))
}

func TestVerifyPassword_Legacy(t *testing.T) {
	assert.True(t, VerifyPassword(legacyHash, "secret1"))
	assert.False(t, VerifyPassword(legacyHash, "secret2"))

	tests := []string{
		"pbkdf2:sha256:1000$Xq3bLm9Z",
		"pbkdf2:sha1:1000$Xq3bLm9Z$b32a",
		"pbkdf2:sha256:abc$Xq3bLm9Z$b32a",
		"pbkdf2:sha256:1000$Xq3bLm9Z$not-hex",
		"plaintext",
	}
	for _, hash := range tests {
		assert.False(t, VerifyPassword(hash, "secret1"), hash)
	}
}

func TestVerifyPassword_LegacyTamperedDigest(t *testing.T) {
	tampered := strings.TrimSuffix(legacyHash, "4e") + "4f"
	assert.False(t, VerifyPassword(tampered, "secret1"))
}

func TestHashPassword_MultiByte(t *testing.T) {
	long := strings.Repeat("密", 25) // 75 bytes
	hash, err := HashPassword(long)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, long))

	// same first 72 bytes, different tail
	other := strings.Repeat("密", 24) + "码"
	assert.False(t, VerifyPassword(hash, other))

	short := "пароль1" // 13 bytes, hashed as is
	hash, err = HashPassword(short)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, short))
}
