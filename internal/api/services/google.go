package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/rohits-web03/cloudvault/internal/auth"
	"github.com/rohits-web03/cloudvault/internal/config"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider runs the Google authorization code flow.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *GoogleProvider) Enabled() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Profile exchanges code for a token and fetches the user's profile with it.
func (g *GoogleProvider) Profile(ctx context.Context, code string) (auth.GoogleProfile, error) {
	var profile auth.GoogleProfile

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return profile, fmt.Errorf("code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return profile, err
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return profile, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("user info returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, fmt.Errorf("failed to parse user info: %w", err)
	}
	return profile, nil
}
