package calendar

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	tokenFile := filepath.Join(t.TempDir(), "nested", "token.json")
	return NewAuthenticator("client-id", "client-secret", "http://localhost:8517/oauth/callback", tokenFile)
}

func TestAuthURL(t *testing.T) {
	auth := testAuthenticator(t)

	raw := auth.AuthURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Contains(t, q.Get("scope"), "calendar.readonly")
}

func TestTokenRoundTrip(t *testing.T) {
	auth := testAuthenticator(t)
	assert.False(t, auth.Authenticated())

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}
	require.NoError(t, auth.saveToken(token))
	assert.True(t, auth.Authenticated())

	loaded, err := auth.loadToken()
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
}

func TestTokenSource_MissingTokenIsAuthError(t *testing.T) {
	auth := testAuthenticator(t)

	_, err := auth.TokenSource(context.Background())
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestTokenSource_ValidToken(t *testing.T) {
	auth := testAuthenticator(t)
	require.NoError(t, auth.saveToken(&oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}))

	ts, err := auth.TokenSource(context.Background())
	require.NoError(t, err)

	// A non-expired token is returned without hitting the network.
	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
}
