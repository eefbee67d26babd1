// Package services contains application services for the marketplace
// client. This file defines the authentication service: login, register,
// logout and session validation against the locally stored credential.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/marketclient/internal/client/api"
	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
	"github.com/dmitrijs2005/marketclient/internal/logging"
)

// AuthService defines authentication operations.
//
// Contract:
//   - Login / Register: authenticate against the server and persist the
//     credential and the profile.
//   - Logout: tell the server (best effort) and always clear local state.
//   - ValidateSession: check a stored token with the server. Only a 401
//     destroys stored credentials; any other failure is returned unchanged.
//   - IsAuthenticated / CurrentUser: local reads, usable offline.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	ValidateSession(ctx context.Context) (bool, error)
	IsAuthenticated(ctx context.Context) bool
	CurrentUser(ctx context.Context) (*models.User, error)
}

// CredentialStore is what the services need from credentials.Store.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	SetCredential(ctx context.Context, c models.Credential) error
	UserData(ctx context.Context) (*models.User, error)
	SetUserData(ctx context.Context, u *models.User) error
	ClearAuth(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
}

type authService struct {
	api   api.Client
	creds CredentialStore
	log   logging.Logger
}

func NewAuthService(client api.Client, creds CredentialStore, log logging.Logger) AuthService {
	return &authService{api: client, creds: creds, log: log}
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.persist(ctx, resp); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "logged in", "user_id", resp.User.ID, "type", resp.User.UserType)
	return resp.User, nil
}

func (a *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	resp, err := a.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := a.persist(ctx, resp); err != nil {
		return nil, err
	}
	a.log.Info(ctx, "registered", "user_id", resp.User.ID, "type", resp.User.UserType)
	return resp.User, nil
}

func (a *authService) persist(ctx context.Context, resp *models.AuthResponse) error {
	if err := a.creds.SetCredential(ctx, resp.Credential()); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	if err := a.creds.SetUserData(ctx, resp.User); err != nil {
		return fmt.Errorf("store profile: %w", err)
	}
	return nil
}

// Logout clears the local session even when the server call fails.
func (a *authService) Logout(ctx context.Context) error {
	if err := a.api.Logout(ctx); err != nil && !errors.Is(err, transport.ErrNotAuthenticated) {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	if err := a.creds.ClearAuth(ctx); err != nil {
		return fmt.Errorf("clear local session: %w", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

func (a *authService) ValidateSession(ctx context.Context) (bool, error) {
	token, err := a.creds.Token(ctx)
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}

	user, err := a.api.Me(ctx)
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrUnauthorized), errors.Is(err, transport.ErrNotAuthenticated):
		// The transport has already cleared the credential and fired the
		// auth-expired handler.
		return false, nil
	default:
		return false, err
	}

	if err := a.creds.SetUserData(ctx, user); err != nil {
		a.log.Warn(ctx, "refreshing cached profile failed", "error", err)
	}
	return true, nil
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	return a.creds.IsAuthenticated(ctx)
}

func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	return a.creds.UserData(ctx)
}
