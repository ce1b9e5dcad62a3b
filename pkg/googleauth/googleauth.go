package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// TokenFileName is the file under DATA_DIR holding the Google OAuth token
const TokenFileName = "google-tokens.json"

const stateTTL = 10 * time.Minute

var (
	ErrNotConfigured    = errors.New("google OAuth not configured")
	ErrNotAuthenticated = errors.New("google account not authenticated")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidState     = errors.New("invalid OAuth state")
)

// Scopes requested for the dashboard account
var Scopes = []string{
	gmail.GmailReadonlyScope,
	calendar.CalendarReadonlyScope,
}

// Client performs the OAuth flow for one Google account and hands out
// authorized HTTP clients. Refreshed tokens are written back to disk.
type Client struct {
	config *oauth2.Config
	path   string

	mu     sync.Mutex
	token  *oauth2.Token
	states map[string]time.Time
	now    func() time.Time
}

// New creates a Client and loads any token previously stored at tokenPath
func New(clientID, clientSecret, redirectURI, tokenPath string) *Client {
	c := &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		path:   tokenPath,
		states: make(map[string]time.Time),
		now:    time.Now,
	}

	token, err := loadToken(tokenPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[Google] Ignoring unreadable token file %s: %v", tokenPath, err)
	}
	c.token = token
	return c
}

// Configured reports whether a client id and secret are set
func (c *Client) Configured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// Authenticated reports whether a token is available
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != nil
}

// AuthURL returns the consent URL with a fresh single-use state
func (c *Client) AuthURL() (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	state := uuid.New().String()
	c.mu.Lock()
	now := c.now()
	for s, issued := range c.states {
		if now.Sub(issued) > stateTTL {
			delete(c.states, s)
		}
	}
	c.states[state] = now
	c.mu.Unlock()

	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for a token and stores it
func (c *Client) Exchange(ctx context.Context, state, code string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if !c.consumeState(state) {
		return ErrInvalidState
	}

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}
	return c.storeToken(token)
}

func (c *Client) consumeState(state string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	issued, ok := c.states[state]
	delete(c.states, state)
	return ok && c.now().Sub(issued) <= stateTTL
}

// HTTPClient returns a client that authorizes requests with the stored token
func (c *Client) HTTPClient(ctx context.Context) (*http.Client, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token == nil {
		return nil, ErrNotAuthenticated
	}

	source := &notifyTokenSource{
		src:      c.config.TokenSource(ctx, token),
		current:  token,
		callback: c.storeToken,
	}
	return oauth2.NewClient(ctx, source), nil
}

func (c *Client) storeToken(token *oauth2.Token) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if err := saveToken(c.path, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// notifyTokenSource reports refreshed tokens so they survive a restart
type notifyTokenSource struct {
	mu       sync.Mutex
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback func(*oauth2.Token) error
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.Printf("[Google] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

// IsAuthError reports whether err means the stored token no longer works
func IsAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return true
	}
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, nil
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
