package auth

import (
	"strings"
	"testing"

	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	for _, pw := range []string{"secret1", "correct horse battery staple", "pässwörd", " "} {
		hashed, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hashed)
		assert.True(t, h.Verify(pw, hashed), "password %q should verify", pw)
	}
}

func TestBcryptHasher_RejectsOtherPassword(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	hashed, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.False(t, h.Verify("secret2", hashed))
	assert.False(t, h.Verify("Secret1", hashed))
	assert.False(t, h.Verify("", hashed))
}

func TestBcryptHasher_SaltedOutputsDiffer(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("secret1", a))
	assert.True(t, h.Verify("secret1", b))
}

func TestBcryptHasher_EmbedsCost(t *testing.T) {
	t.Parallel()
	h, err := NewBcryptHasher(DefaultBcryptCost)
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, h.Cost())

	hashed, err := h.Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestBcryptHasher_VerifyGarbageHashIsFalse(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	assert.False(t, h.Verify("secret1", ""))
	assert.False(t, h.Verify("secret1", "not-a-bcrypt-hash"))
}

func TestBcryptHasher_TooLongPassword(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	_, err := h.Hash(strings.Repeat("a", 100))
	var he *apperr.HashingError
	require.ErrorAs(t, err, &he)
}

func TestNewBcryptHasher_CostRange(t *testing.T) {
	t.Parallel()

	_, err := NewBcryptHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)
	_, err = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}
