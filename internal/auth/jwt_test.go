package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("super-secret")

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(t *testing.T, clock *fakeClock) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testSecret, DefaultTokenTTL, WithClock(clock.Now))
	require.NoError(t, err)
	return m
}

func requireReason(t *testing.T, err error, reason string) {
	t.Helper()
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, reason, ve.Reason)
}

func TestIssueAndValidate_Success(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)

	tok, err := m.Issue("user-123", models.RoleStudent)
	require.NoError(t, err)

	claims, err := m.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, m.TTL())
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, clock.t, claims.IssuedAt.Time.UTC())
	assert.Equal(t, clock.t.Add(24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestIssue_WireClaims(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	m := newTestManager(t, clock)

	tok, err := m.Issue("user-1", models.RoleAdmin)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Equal(t, "user-1", raw["sub"])
	assert.Equal(t, "admin", raw["role"])
	assert.EqualValues(t, 1700000000, raw["iat"])
	assert.EqualValues(t, 1700000000+86400, raw["exp"])
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issuedAt}
	m := newTestManager(t, clock)

	tok, err := m.Issue("u1", models.RoleStudent)
	require.NoError(t, err)

	clock.t = issuedAt.Add(24*time.Hour - time.Second)
	_, err = m.Validate(tok)
	require.NoError(t, err, "token must be valid just before expiry")

	clock.t = issuedAt.Add(24 * time.Hour)
	_, err = m.Validate(tok)
	requireReason(t, err, apperr.ReasonExpired)

	clock.t = issuedAt.Add(48 * time.Hour)
	_, err = m.Validate(tok)
	requireReason(t, err, apperr.ReasonExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(t, clock)
	other, err := NewTokenManager([]byte("other-secret"), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	tok, err := other.Issue("u2", models.RoleStudent)
	require.NoError(t, err)

	_, err = m.Validate(tok)
	requireReason(t, err, apperr.ReasonBadSignature)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, &fakeClock{t: time.Now()})

	for _, tok := range []string{"", "abc", "not.a", "a..b", "a.b.c.d", ".."} {
		_, err := m.Validate(tok)
		requireReason(t, err, apperr.ReasonMalformed)
	}
}

func TestValidate_GarbageSignedWithSecretIsMalformed(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, &fakeClock{t: time.Now()})

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`not json`))
	sig, err := jwt.SigningMethodHS256.Sign(header+"."+payload, testSecret)
	require.NoError(t, err)

	_, err = m.Validate(header + "." + payload + "." + base64.RawURLEncoding.EncodeToString(sig))
	requireReason(t, err, apperr.ReasonMalformed)
}

func TestValidate_RejectsUnknownRoleAndMissingExpiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Now()}
	m := newTestManager(t, clock)

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "root",
		"iat":  clock.t.Unix(),
		"exp":  clock.t.Add(time.Hour).Unix(),
	})
	tok, err := bad.SignedString(testSecret)
	require.NoError(t, err)
	_, err = m.Validate(tok)
	requireReason(t, err, apperr.ReasonMalformed)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "student",
		"iat":  clock.t.Unix(),
	})
	tok, err = noExp.SignedString(testSecret)
	require.NoError(t, err)
	_, err = m.Validate(tok)
	requireReason(t, err, apperr.ReasonMalformed)
}

func TestValidate_AnySingleBitFlipFails(t *testing.T) {
	t.Parallel()
	m := newTestManager(t, &fakeClock{t: time.Now()})

	tok, err := m.Issue("user-123", models.RoleStudent)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		for bit := 0; bit < 8; bit++ {
			mutated := []byte(tok)
			mutated[i] ^= 1 << bit
			s := string(mutated)

			claims, err := m.Validate(s)
			require.Error(t, err, "byte %d bit %d", i, bit)
			assert.Nil(t, claims)

			want := apperr.ReasonBadSignature
			if strings.Count(s, ".") != 2 {
				want = apperr.ReasonMalformed
			}
			assert.Equal(t, want, apperr.ValidationReason(err), "byte %d bit %d", i, bit)
		}
	}
}

func TestNewTokenManager_RequiresSecretAndTTL(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewTokenManager(testSecret, 0)
	assert.Error(t, err)
}
