// Package calendar provides read-only access to the user's Google Calendar.
// The OAuth 2.0 flow and token refresh are delegated to golang.org/x/oauth2;
// only the token file location is owned here.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

// Sentinel errors for the router's failure handling.
var (
	// ErrAuthRequired means there is no usable credential; the user has to
	// run the authentication flow (again).
	ErrAuthRequired = errors.New("calendar authentication required")

	// ErrUnavailable means the calendar service could not be reached.
	ErrUnavailable = errors.New("calendar service unavailable")
)

// Authenticator manages the OAuth credential for calendar access.
type Authenticator struct {
	oauth     *oauth2.Config
	tokenFile string
}

// NewAuthenticator creates an authenticator with the read-only calendar scope.
func NewAuthenticator(clientID, clientSecret, redirectURL, tokenFile string) *Authenticator {
	return &Authenticator{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{gcal.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		tokenFile: tokenFile,
	}
}

// AuthURL returns the consent page URL for the authorization-code flow.
func (a *Authenticator) AuthURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token and persists it.
func (a *Authenticator) Exchange(ctx context.Context, code string) error {
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	return a.saveToken(token)
}

// Authenticated reports whether a token is already stored.
func (a *Authenticator) Authenticated() bool {
	_, err := a.loadToken()
	return err == nil
}

// TokenSource returns an auto-refreshing token source. Refreshed tokens are
// written back to the token file so the refresh survives restarts.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	token, err := a.loadToken()
	if err != nil {
		return nil, ErrAuthRequired
	}
	return &savingSource{
		auth: a,
		src:  a.oauth.TokenSource(ctx, token),
		last: token,
	}, nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenFile)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, errors.New("empty token")
	}
	return &token, nil
}

func (a *Authenticator) saveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0755); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(a.tokenFile, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// savingSource persists tokens after a refresh.
type savingSource struct {
	auth *Authenticator
	src  oauth2.TokenSource
	last *oauth2.Token
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	if s.last == nil || token.AccessToken != s.last.AccessToken {
		s.last = token
		// Failure to persist only costs a refresh on next start.
		_ = s.auth.saveToken(token)
	}
	return token, nil
}
