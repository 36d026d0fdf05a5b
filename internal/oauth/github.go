// Package oauth signs users in through GitHub.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const defaultAPIBase = "https://api.github.com"

// Profile is the identity returned by the provider.
type Profile struct {
	Email     string
	Name      string
	AvatarURL string
}

// GitHub runs the authorization code flow against GitHub.
type GitHub struct {
	config  *oauth2.Config
	apiBase string
}

// NewGitHub creates a GitHub provider redirecting back to redirectURL.
func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return NewGitHubWithEndpoint(clientID, clientSecret, redirectURL, github.Endpoint, defaultAPIBase)
}

// NewGitHubWithEndpoint creates a provider talking to a custom endpoint and API base URL.
func NewGitHubWithEndpoint(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint, apiBase string) *GitHub {
	return &GitHub{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: strings.TrimRight(apiBase, "/"),
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *GitHub) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Profile exchanges code for a token and loads the user's profile. Accounts
// without a verified email are refused.
func (g *GitHub) Profile(ctx context.Context, code string) (*Profile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	client := g.config.Client(ctx, token)

	var u githubUser
	if err := g.get(ctx, client, "/user", &u); err != nil {
		return nil, err
	}

	email := u.Email
	if email == "" {
		var emails []githubEmail
		if err := g.get(ctx, client, "/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, errors.New("github account has no verified primary email")
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return &Profile{Email: strings.ToLower(email), Name: name, AvatarURL: u.AvatarURL}, nil
}

func (g *GitHub) get(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github %s: failed to decode response: %w", path, err)
	}
	return nil
}
