package token

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, key string, minutes int64) *Manager {
	t.Helper()
	m, err := NewManager(Config{SigningKey: []byte(key), SessionDurationMinutes: minutes})
	require.NoError(t, err)
	return m
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := newManager(t, "super-secret", 60)

	tok, err := m.Issue(42)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tok, "."))

	c, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.InDelta(t, time.Now().Unix(), c.IssuedAt, 2)
}

func TestIssue_WireFormat(t *testing.T) {
	m := newManager(t, "k", 60)
	tok, err := m.Issue(7)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var h map[string]any
	require.NoError(t, json.Unmarshal(header, &h))
	assert.Equal(t, "HS256", h["alg"])

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var p map[string]any
	require.NoError(t, json.Unmarshal(payload, &p))
	assert.Len(t, p, 2)
	assert.EqualValues(t, 7, p["user_id"])
	assert.Contains(t, p, "iat")
	assert.NotContains(t, p, "exp")
}

func TestVerify_WrongKey(t *testing.T) {
	tok, err := newManager(t, "right-secret", 60).Issue(1)
	require.NoError(t, err)

	_, err = newManager(t, "wrong-secret", 60).Verify(tok)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	m := newManager(t, "k", 60)
	issuedAt := time.Now()
	m.now = func() time.Time { return issuedAt }
	tok, err := m.Issue(1)
	require.NoError(t, err)

	m.now = func() time.Time { return issuedAt.Add(60*time.Minute + time.Second) }
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// exactly at the boundary the token is still valid
	m.now = func() time.Time { return issuedAt.Add(60 * time.Minute) }
	_, err = m.Verify(tok)
	assert.NoError(t, err)
}

func TestVerify_DurationReadAtVerification(t *testing.T) {
	issuer := newManager(t, "k", 600)
	tok, err := issuer.Issue(1)
	require.NoError(t, err)

	verifier := newManager(t, "k", 1)
	verifier.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: 1, IssuedAt: time.Now().Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newManager(t, "k", 60).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = newManager(t, "k", 60).Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	m := newManager(t, "k", 60)
	for _, s := range []string{"", "not.a.jwt", "abc"} {
		_, err := m.Verify(s)
		assert.ErrorIs(t, err, ErrUnauthorized, "token %q", s)
	}
}

func TestNewManager_EmptyKey(t *testing.T) {
	_, err := NewManager(Config{SessionDurationMinutes: 60})
	assert.ErrorIs(t, err, ErrEmptySecretKey)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer  abc", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
	}
	for _, tc := range tests {
		got, err := BearerToken(tc.header)
		if tc.ok {
			require.NoError(t, err, "header %q", tc.header)
			assert.Equal(t, tc.want, got)
		} else {
			assert.ErrorIs(t, err, ErrMissingBearer, "header %q", tc.header)
		}
	}
}

func TestFromRequest(t *testing.T) {
	m := newManager(t, "k", 60)
	tok, err := m.Issue(99)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/user", nil)
	_, err = m.FromRequest(r)
	assert.ErrorIs(t, err, ErrMissingBearer)

	r.Header.Set("Authorization", "Bearer "+tok)
	c, err := m.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, int64(99), c.UserID)
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UserID: 5})
	c, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(5), c.UserID)
}

func TestRequireAuth(t *testing.T) {
	m := newManager(t, "k", 60)
	tok, err := m.Issue(11)
	require.NoError(t, err)

	var failErr error
	mw := RequireAuth(m, func(w http.ResponseWriter, r *http.Request, err error) {
		failErr = err
		w.WriteHeader(http.StatusUnauthorized)
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(11), c.UserID)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, errors.Is(failErr, ErrUnauthorized))
}
