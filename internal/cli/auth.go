package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Google Calendar",
	Long: `Run the OAuth 2.0 authorization-code flow for read-only calendar
access. A browser consent page is opened by URL; the granted token is stored
locally and refreshed automatically afterwards.`,
	RunE: runAuth,
}

func runAuth(cmd *cobra.Command, args []string) error {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be configured")
	}

	auth := newAuthenticator()
	state := uuid.NewString()

	redirect, err := url.Parse(cfg.RedirectURL)
	if err != nil {
		return fmt.Errorf("parse redirect URL: %w", err)
	}

	// Local callback server receives the authorization code.
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("state mismatch in OAuth callback")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- errors.New("missing code in OAuth callback")
			return
		}
		fmt.Fprintln(w, "Authentication complete. You can close this window and return to the terminal.")
		codeCh <- code
	})

	httpServer := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer httpServer.Close()

	fmt.Println("Open this URL in your browser to grant calendar access:")
	fmt.Println()
	fmt.Println("  " + auth.AuthURL(state))
	fmt.Println()
	fmt.Println("Waiting for the callback...")

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	select {
	case code := <-codeCh:
		if err := auth.Exchange(ctx, code); err != nil {
			return fmt.Errorf("complete authentication: %w", err)
		}
		fmt.Println("Calendar access granted. Token stored at " + cfg.TokenFile)
		return nil
	case err := <-errCh:
		return fmt.Errorf("authentication failed: %w", err)
	case <-ctx.Done():
		return errors.New("timed out waiting for the OAuth callback")
	}
}
