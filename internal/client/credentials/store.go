// Package credentials persists the authentication token and the cached user
// profile.
//
// The token goes to the OS secure store when one is available. Platforms
// without one fall back to the general key-value store; a warning is logged
// the first time that happens. The profile is never treated as secret and
// always lives in the key-value store.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/repositories/kv"
	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/zalando/go-keyring"
)

const (
	KeyToken    = "@auth_token"
	KeyUserData = "@user_data"

	secretUser = "auth_token"
)

type Store struct {
	secrets SecretStore
	kv      kv.Repository
	service string
	log     logging.Logger

	mu       sync.Mutex
	fallback bool
}

func NewStore(secrets SecretStore, repo kv.Repository, service string, log logging.Logger) *Store {
	return &Store{secrets: secrets, kv: repo, service: service, log: log}
}

// Credential returns the stored credential, or nil when unauthenticated.
func (s *Store) Credential(ctx context.Context) (*models.Credential, error) {
	raw, err := s.readSecret(ctx)
	if err != nil || raw == "" {
		return nil, err
	}
	var c models.Credential
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	if c.Token == "" {
		return nil, nil
	}
	return &c, nil
}

// Token returns the stored token or "" when none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	c, err := s.Credential(ctx)
	if err != nil || c == nil {
		return "", err
	}
	return c.Token, nil
}

// SetCredential overwrites the stored credential.
func (s *Store) SetCredential(ctx context.Context, c models.Credential) error {
	if c.Token == "" {
		return errors.New("empty token")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}

	if err := s.secrets.Set(s.service, secretUser, string(b)); err != nil {
		s.warnFallback(ctx, err)
		if err := s.kv.Set(ctx, KeyToken, b); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		// The fallback copy shadows the secure one on read; removing the
		// older secure copy keeps a single credential stored.
		if err := s.secrets.Delete(s.service, secretUser); err != nil && !absent(err) {
			s.log.Warn(ctx, "stale secure token not removed", "error", err)
		}
		return nil
	}

	// A stale fallback copy must not outlive a newer secure one.
	if err := s.kv.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("drop fallback token: %w", err)
	}
	return nil
}

// SetToken stores a bare token, keeping the user id of the current
// credential if there is one.
func (s *Store) SetToken(ctx context.Context, token string) error {
	var userID int64
	if c, err := s.Credential(ctx); err == nil && c != nil {
		userID = c.UserID
	}
	return s.SetCredential(ctx, models.Credential{Token: token, UserID: userID})
}

// UserData returns the cached profile, or nil when none is cached.
func (s *Store) UserData(ctx context.Context) (*models.User, error) {
	b, err := s.kv.Get(ctx, KeyUserData)
	if err != nil || b == nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode user data: %w", err)
	}
	return &u, nil
}

func (s *Store) SetUserData(ctx context.Context, u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyUserData, b)
}

// ClearAuth removes the token and the profile. The token goes first so a
// failure part-way never leaves the store looking authenticated. All errors
// are joined and returned.
func (s *Store) ClearAuth(ctx context.Context) error {
	var errs []error

	if err := s.secrets.Delete(s.service, secretUser); err != nil && !s.ignorable(err) {
		errs = append(errs, fmt.Errorf("delete secure token: %w", err))
	}
	if err := s.kv.DeleteMany(ctx, KeyToken, KeyUserData); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsAuthenticated is true iff a non-empty token is stored.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.Token(ctx)
	return err == nil && token != ""
}

// readSecret prefers the key-value copy: it only exists when the latest
// write could not reach the secure store.
func (s *Store) readSecret(ctx context.Context) (string, error) {
	b, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("read fallback token: %w", err)
	}
	if b != nil {
		return string(b), nil
	}

	v, err := s.secrets.Get(s.service, secretUser)
	if err == nil {
		return v, nil
	}
	if s.ignorable(err) {
		return "", nil
	}
	return "", fmt.Errorf("read secure token: %w", err)
}

// ignorable reports secure-store errors that just mean "nothing stored
// there": not found, no keyring on this platform, or a store already known
// to be broken because writes fell back to the key-value store.
func (s *Store) ignorable(err error) bool {
	if absent(err) {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallback
}

func absent(err error) bool {
	return errors.Is(err, keyring.ErrNotFound) || errors.Is(err, keyring.ErrUnsupportedPlatform)
}

func (s *Store) warnFallback(ctx context.Context, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallback {
		return
	}
	s.fallback = true
	s.log.Warn(ctx, "secure storage unavailable, token stored in plain key-value store", "error", cause)
}
