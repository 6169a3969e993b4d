package store

import (
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// TokenStore persists the Strava OAuth token pair. Removing the file
// is how the user disconnects.
type TokenStore struct {
	mu   sync.Mutex
	path string
}

// storedToken is the on-disk token shape (Strava-style field names).
type storedToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// NewTokenStore creates a store backed by path.
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Token returns the saved token, or nil when not connected.
func (s *TokenStore) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored storedToken
	if err := readJSON(s.path, &stored); err != nil {
		if IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		Expiry:       time.Unix(stored.ExpiresAt, 0),
		TokenType:    "Bearer",
	}, nil
}

// Save persists the token pair.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(s.path, storedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry.Unix(),
	})
}

// Clear removes the stored token (disconnect). Missing file is fine.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !IsNotExist(err) {
		return err
	}
	return nil
}

// Connected reports whether a token is on disk.
func (s *TokenStore) Connected() bool {
	tok, err := s.Token()
	return err == nil && tok != nil && tok.AccessToken != ""
}
