package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
)

// Authenticator obtains and revokes bearer tokens for a session. current
// is the token being replaced; implementations should only prompt the user
// interactively when current is nil, and refresh silently otherwise.
type Authenticator interface {
	Authorize(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error)
	Revoke(ctx context.Context, token string) error
}

// DeviceAuthenticator implements the consent flow with the OAuth 2.0
// device grant: the user visits a verification URL and enters a short
// code. Silent refreshes go through the refresh token when one is held.
type DeviceAuthenticator struct {
	Config *oauth2.Config

	// Prompt receives the verification instructions. Defaults to stdout.
	Prompt io.Writer

	// RevokeURL receives the token on sign-out. Empty disables revocation.
	RevokeURL string

	// HTTPClient overrides the client used for revocation.
	HTTPClient *http.Client
}

func (a *DeviceAuthenticator) Authorize(ctx context.Context, current *oauth2.Token) (*oauth2.Token, error) {
	if current != nil && current.RefreshToken != "" {
		tok, err := a.Config.TokenSource(ctx, current).Token()
		if err != nil {
			return nil, errors.Errorf("silent token refresh: %w", err)
		}
		return tok, nil
	}

	resp, err := a.Config.DeviceAuth(ctx)
	if err != nil {
		return nil, errors.Errorf("starting device authorization: %w", err)
	}

	out := a.Prompt
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Visit %s and enter code %s\n", resp.VerificationURI, resp.UserCode)

	tok, err := a.Config.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, errors.Errorf("waiting for device authorization: %w", err)
	}
	return tok, nil
}

func (a *DeviceAuthenticator) Revoke(ctx context.Context, token string) error {
	if a.RevokeURL == "" {
		return nil
	}

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Errorf("creating revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := a.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Errorf("revoking token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("revoke endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
