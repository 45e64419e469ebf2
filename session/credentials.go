package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/oauth2"
)

// Credential failure reasons.
var (
	ErrUserDeclined       = errors.New("user declined authorization")
	ErrNoCachedCredential = errors.New("no cached credential")
	ErrProviderError      = errors.New("credential provider error")
)

// CredentialManager produces access credentials for the subscription source.
// Acquire with forceInteractive=false must never prompt the user; with true
// it may. Invalidate drops the cached credential so the next Acquire cannot
// silently reuse a stale one.
type CredentialManager interface {
	Acquire(ctx context.Context, forceInteractive bool) (string, error)
	Invalidate()
}

// AuthorizeFunc runs the interactive part of the OAuth flow and returns an
// authorization code. It should return ErrUserDeclined if the user backs out.
type AuthorizeFunc func(ctx context.Context, authURL string) (string, error)

// OAuthCredentialManager caches an OAuth token and refreshes it silently
// while a refresh token is available. The interactive path is delegated to
// an AuthorizeFunc so the manager stays testable.
type OAuthCredentialManager struct {
	config    *oauth2.Config
	authorize AuthorizeFunc

	mu    sync.Mutex
	token *oauth2.Token
}

func NewOAuthCredentialManager(config *oauth2.Config, authorize AuthorizeFunc) *OAuthCredentialManager {
	return &OAuthCredentialManager{
		config:    config,
		authorize: authorize,
	}
}

func (m *OAuthCredentialManager) Acquire(ctx context.Context, forceInteractive bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != nil && m.token.Valid() {
		return m.token.AccessToken, nil
	}

	if m.token != nil {
		// Expired but refreshable without user interaction.
		refreshed, err := m.config.TokenSource(ctx, m.token).Token()
		if err == nil {
			m.token = refreshed
			return refreshed.AccessToken, nil
		}
		log.Printf("WARN (Credentials): token refresh failed: %v", err)
		m.token = nil
		if !forceInteractive {
			return "", fmt.Errorf("%w: refresh failed: %v", ErrProviderError, err)
		}
	}

	if !forceInteractive {
		return "", ErrNoCachedCredential
	}

	authURL := m.config.AuthCodeURL("state", oauth2.AccessTypeOffline)
	code, err := m.authorize(ctx, authURL)
	if err != nil {
		if errors.Is(err, ErrUserDeclined) {
			return "", err
		}
		return "", fmt.Errorf("%w: authorization failed: %v", ErrProviderError, err)
	}

	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: code exchange failed: %v", ErrProviderError, err)
	}

	m.token = token
	log.Println("INFO (Credentials): interactive authorization succeeded")
	return token.AccessToken, nil
}

func (m *OAuthCredentialManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
}
