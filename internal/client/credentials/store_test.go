package credentials

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/dmitrijs2005/marketclient/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func newStore(t *testing.T) (*Store, *testutil.MemorySecrets) {
	t.Helper()
	secrets := testutil.NewMemorySecrets()
	return NewStore(secrets, testutil.NewKV(t), "marketclient-test", logging.NewDiscard()), secrets
}

func TestStore_EmptyIsUnauthenticated(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token)
	assert.False(t, s.IsAuthenticated(ctx))

	u, err := s.UserData(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestStore_SetCredential_UsesSecureStore(t *testing.T) {
	s, secrets := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "tok-1", UserID: 42}))

	raw, err := secrets.Get("marketclient-test", secretUser)
	require.NoError(t, err)
	assert.Contains(t, raw, "tok-1")

	fallback, err := s.kv.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Nil(t, fallback, "token must not be copied to the plain store")

	c, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Credential{Token: "tok-1", UserID: 42}, c)
	assert.True(t, s.IsAuthenticated(ctx))
}

func TestStore_SetCredential_Overwrites(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "old", UserID: 1}))
	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "new", UserID: 2}))

	c, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", c.Token)
	assert.Equal(t, int64(2), c.UserID)
}

func TestStore_SetToken_KeepsUserID(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "a", UserID: 9}))
	require.NoError(t, s.SetToken(ctx, "b"))

	c, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Credential{Token: "b", UserID: 9}, *c)

	require.Error(t, s.SetToken(ctx, ""))
}

func TestStore_FallsBackWhenKeyringUnsupported(t *testing.T) {
	var buf bytes.Buffer
	secrets := testutil.NewMemorySecrets()
	secrets.Err = keyring.ErrUnsupportedPlatform
	s := NewStore(secrets, testutil.NewKV(t), "svc", logging.NewTextLogger(&buf, slog.LevelDebug))
	ctx := context.Background()

	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "plain", UserID: 3}))
	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "plain2", UserID: 3}))

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plain2", token)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("secure storage unavailable")), "warning is logged once")

	require.NoError(t, s.ClearAuth(ctx))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestStore_FallsBackOnBrokenKeyring(t *testing.T) {
	secrets := testutil.NewMemorySecrets()
	secrets.Err = errors.New("dbus: no session bus")
	s := NewStore(secrets, testutil.NewKV(t), "svc", logging.NewDiscard())
	ctx := context.Background()

	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "t", UserID: 1}))
	assert.True(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.ClearAuth(ctx))
	assert.False(t, s.IsAuthenticated(ctx))
}

func TestStore_FallbackWriteReplacesSecureCopy(t *testing.T) {
	s, secrets := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "old", UserID: 1}))
	secrets.SetErr = errors.New("keychain write denied")
	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "new", UserID: 2}))

	c, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Credential{Token: "new", UserID: 2}, c)

	_, err = secrets.Get("marketclient-test", secretUser)
	assert.ErrorIs(t, err, keyring.ErrNotFound, "only one credential stays stored")

	secrets.SetErr = nil
	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "newer", UserID: 2}))
	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", token)

	fallback, err := s.kv.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Nil(t, fallback)
}

func TestStore_ReadErrorSurfacesWhenNothingFallsBack(t *testing.T) {
	secrets := testutil.NewMemorySecrets()
	secrets.Err = errors.New("keychain locked")
	s := NewStore(secrets, testutil.NewKV(t), "svc", logging.NewDiscard())

	_, err := s.Token(context.Background())
	require.ErrorContains(t, err, "keychain locked")
	assert.False(t, s.IsAuthenticated(context.Background()))
}

func TestStore_UserData_RoundTrip(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	u := &models.User{ID: 5, Email: "bo@example.com", UserType: models.UserTypeClient, CompanyName: "Bo Ltd"}
	require.NoError(t, s.SetUserData(ctx, u))

	got, err := s.UserData(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestStore_ClearAuth_RemovesTokenAndProfile(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCredential(ctx, models.Credential{Token: "x", UserID: 1}))
	require.NoError(t, s.SetUserData(ctx, &models.User{ID: 1, Email: "a@b.c", UserType: models.UserTypeWorker}))

	require.NoError(t, s.ClearAuth(ctx))
	require.NoError(t, s.ClearAuth(ctx), "clearing twice is fine")

	token, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", token)

	u, err := s.UserData(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

type failingDelete struct {
	*testutil.MemorySecrets
}

func (failingDelete) Delete(string, string) error { return errors.New("permission denied") }

func TestStore_ClearAuth_SurfacesSecureDeleteFailure(t *testing.T) {
	secrets := failingDelete{testutil.NewMemorySecrets()}
	s := NewStore(secrets, testutil.NewKV(t), "svc", logging.NewDiscard())
	ctx := context.Background()

	require.NoError(t, s.SetUserData(ctx, &models.User{ID: 1, Email: "a@b.c", UserType: models.UserTypeWorker}))

	err := s.ClearAuth(ctx)
	require.ErrorContains(t, err, "permission denied")

	u, err := s.UserData(ctx)
	require.NoError(t, err)
	assert.Nil(t, u, "profile is still removed")
}
