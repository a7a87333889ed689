package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthUserInfo contains user data from OAuth provider.
type OAuthUserInfo struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

func (i *OAuthUserInfo) metadata(provider string) []byte {
	data, _ := json.Marshal(map[string]string{
		"oauth_provider": provider,
		"oauth_id":       i.ProviderID,
		"avatar_url":     i.AvatarURL,
	})
	return data
}

// OAuthService handles the Google authorization code flow.
type OAuthService struct {
	googleConfig *oauth2.Config
	userInfoURL  string
	logger       zerolog.Logger
	httpClient   *http.Client
}

// NewOAuthService creates an OAuth service with provider credentials.
func NewOAuthService(googleClientID, googleClientSecret, googleRedirectURI string, logger zerolog.Logger) *OAuthService {
	config := &oauth2.Config{
		ClientID:     googleClientID,
		ClientSecret: googleClientSecret,
		RedirectURL:  googleRedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	return &OAuthService{
		googleConfig: config,
		userInfoURL:  googleUserInfoURL,
		logger:       logger.With().Str("component", "oauth").Logger(),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether client credentials were supplied.
func (s *OAuthService) Configured() bool {
	return s != nil && s.googleConfig.ClientID != ""
}

// StartOAuthFlow generates the authorization URL for Google OAuth.
func (s *OAuthService) StartOAuthFlow(provider, state string) (string, error) {
	if provider != OAuthProviderGoogle {
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}
	if !s.Configured() {
		return "", fmt.Errorf("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID)")
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// HandleOAuthCallback exchanges the authorization code and fetches the profile.
func (s *OAuthService) HandleOAuthCallback(ctx context.Context, provider, code string) (*OAuthUserInfo, error) {
	if provider != OAuthProviderGoogle {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth token exchange failed")
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	resp, err := s.googleConfig.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info API returned status %d", resp.StatusCode)
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &OAuthUserInfo{
		ProviderID: googleUser.ID,
		Email:      googleUser.Email,
		Name:       googleUser.Name,
		AvatarURL:  googleUser.Picture,
	}, nil
}
