// Package auth manages the OAuth2 token used to send mail through Gmail.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/alnah/go-letterpdf/internal/fileutil"
)

var (
	// ErrTokenNotSet indicates no OAuth token is available yet.
	ErrTokenNotSet = errors.New("no token defined")
	// ErrInvalidState indicates an unknown or expired OAuth state parameter.
	ErrInvalidState = errors.New("invalid or expired state parameter")
	// ErrMissingCredentials indicates the OAuth client id or secret is empty.
	ErrMissingCredentials = errors.New("oauth client id and secret are required")
)

const stateTTL = 5 * time.Minute

// NewConfig returns an OAuth2 config allowed to send mail only.
func NewConfig(clientID, clientSecret, redirectURL string) (*oauth2.Config, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// Token holds the current OAuth2 token and the pending authorization states.
type Token struct {
	mu          sync.RWMutex
	cfg         *oauth2.Config
	token       *oauth2.Token
	persistPath string
	states      map[string]time.Time
	logger      *zap.Logger
}

// NewToken creates a Token, loading a previously persisted token when
// persistPath exists.
func NewToken(cfg *oauth2.Config, persistPath string, logger *zap.Logger) (*Token, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Token{
		cfg:         cfg,
		persistPath: persistPath,
		states:      make(map[string]time.Time),
		logger:      logger,
	}
	if persistPath == "" {
		return t, nil
	}

	data, err := os.ReadFile(persistPath) // #nosec G304 -- configured token path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("token file not found, it will be created after authorization", zap.String("path", persistPath))
			return t, nil
		}
		return nil, fmt.Errorf("reading token: %w", err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", persistPath, err)
	}
	t.token = token
	return t, nil
}

// RedirectURL returns the authorization URL with a fresh state.
func (t *Token) RedirectURL() (string, error) {
	state, err := t.newState()
	if err != nil {
		return "", err
	}
	return t.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (t *Token) newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	state := base64.URLEncoding.EncodeToString(b)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.states[state] = now.Add(stateTTL)
	for s, exp := range t.states {
		if exp.Before(now) {
			delete(t.states, s)
		}
	}
	return state, nil
}

func (t *Token) consumeState(state string) bool {
	if state == "" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, ok := t.states[state]
	if !ok {
		return false
	}
	delete(t.states, state)
	return !time.Now().After(expiry)
}

// AuthorizeCode exchanges an authorization code after validating state.
func (t *Token) AuthorizeCode(ctx context.Context, code, state string) error {
	if !t.consumeState(state) {
		return ErrInvalidState
	}

	tok, err := t.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging code: %w", err)
	}

	t.mu.Lock()
	t.token = tok
	t.mu.Unlock()

	t.logger.Info("oauth token authorized", zap.Time("expiry", tok.Expiry))
	return nil
}

// OAuthToken returns the current token.
func (t *Token) OAuthToken() (*oauth2.Token, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.token == nil {
		return nil, ErrTokenNotSet
	}
	return t.token, nil
}

// HTTPClient returns a client that refreshes the token as needed.
func (t *Token) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := t.OAuthToken()
	if err != nil {
		return nil, err
	}
	return t.cfg.Client(ctx, tok), nil
}

// Persist writes the token to disk. It is a no-op without a path or token.
func (t *Token) Persist() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.persistPath == "" || t.token == nil {
		return nil
	}

	data, err := json.Marshal(t.token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := fileutil.WriteFileAtomic(t.persistPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}
