package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("s3cret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-pass", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordBadHash(t *testing.T) {
	_, err := VerifyPassword("x", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestJWTRoundTrip(t *testing.T) {
	require.NoError(t, Init())

	token, err := CreateJWT("user-123", "ADMIN")
	require.NoError(t, err)

	sub, role, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", sub)
	assert.Equal(t, "ADMIN", role)
}

func TestJWTRejectsGarbage(t *testing.T) {
	require.NoError(t, Init())

	_, _, err := AuthenticateJWT("garbage.token.value")
	assert.Error(t, err)
}

func TestJWTRejectsForeignKey(t *testing.T) {
	require.NoError(t, Init())
	token, err := CreateJWT("user-123", "PLAYER")
	require.NoError(t, err)

	// Re-initializing rotates the key pair; old tokens must fail.
	require.NoError(t, Init())
	_, _, err = AuthenticateJWT(token)
	assert.Error(t, err)
}

func TestGenerateOTP(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Regexp(t, pattern, otp)
	}
}
