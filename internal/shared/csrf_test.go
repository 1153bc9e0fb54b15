package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	m := NewCSRFManager("test-secret")

	token := m.TokenFor("session-abc")
	require.NotEmpty(t, token)
	assert.NoError(t, m.Verify("session-abc", token))
}

func TestCSRFTokenBoundToSession(t *testing.T) {
	m := NewCSRFManager("test-secret")

	token := m.TokenFor("session-abc")
	assert.ErrorIs(t, m.Verify("session-xyz", token), ErrCSRFTokenMismatch)
}

func TestCSRFSecretMatters(t *testing.T) {
	token := NewCSRFManager("secret-one").TokenFor("session-abc")
	assert.ErrorIs(t, NewCSRFManager("secret-two").Verify("session-abc", token), ErrCSRFTokenMismatch)
}

func TestCSRFMissingToken(t *testing.T) {
	m := NewCSRFManager("test-secret")

	assert.ErrorIs(t, m.Verify("session-abc", ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, m.Verify("", "whatever"), ErrCSRFTokenMissing)
	assert.Empty(t, m.TokenFor(""))
}

func TestCSRFTokenDeterministic(t *testing.T) {
	m := NewCSRFManager("test-secret")
	assert.Equal(t, m.TokenFor("session-abc"), m.TokenFor("session-abc"))
	assert.NotEqual(t, m.TokenFor("session-abc"), m.TokenFor("session-abd"))
}
