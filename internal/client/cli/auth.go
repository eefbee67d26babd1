package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Register prompts for the account details and creates a new account. On
// success the user is signed in.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	var err error

	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if req.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if req.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	kind, err := getSimpleText(a.reader, "Account type (worker/client)", a.out)
	if err != nil {
		return err
	}
	switch models.UserType(strings.ToLower(kind)) {
	case models.UserTypeWorker:
		req.UserType = models.UserTypeWorker
	case models.UserTypeClient:
		req.UserType = models.UserTypeClient
		if req.CompanyName, err = getSimpleText(a.reader, "Company name (optional)", a.out); err != nil {
			return err
		}
	default:
		return usage("account type must be worker or client, got %q", kind)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)
	req.Password = string(password)

	u, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}
	a.setUser(u.Email)
	printlnFn(fmt.Sprintf("Welcome, %s!", displayName(u)))
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	u, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	a.setUser(u.Email)
	printlnFn("Login successful")
	return nil
}

// Logout ends the session. The local session is gone even when the server
// could not be told.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	a.setUser("")
	printlnFn("Logged out")
	return err
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if u == nil {
		return transport.ErrNotAuthenticated
	}
	printlnFn(fmt.Sprintf("%s <%s>, %s #%d", displayName(u), u.Email, u.UserType, u.ID))
	return nil
}

// Validate checks the stored session with the server.
func (a *App) Validate(ctx context.Context) error {
	ok, err := a.auth.ValidateSession(ctx)
	if err != nil {
		return err
	}
	if !ok {
		a.setUser("")
		printlnFn("Session is no longer valid, please log in again")
		return nil
	}
	printlnFn("Session is valid")
	return nil
}

func displayName(u *models.User) string {
	if n := u.FullName(); n != "" {
		return n
	}
	return u.Email
}
