package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileJSON = `{"user_id":7,"bio":"Plumber","skills":["pipes"],"hourly_rate":40,"location":"Riga","is_available":true}`

func TestProfile_GetCachedForOfflineUse(t *testing.T) {
	e := newEnv(t)
	signedIn(t, e)
	e.handle("GET /api/workers/profile/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, profileJSON)
	})
	profiles := NewProfileService(e.api, e.queue, time.Hour)
	ctx := context.Background()

	p, err := profiles.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Plumber", p.Bio)

	e.monitor.SetOnline(ctx, false)
	before := e.backend.requests.Load()
	cached, err := profiles.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, cached)
	assert.Equal(t, before, e.backend.requests.Load())
}

func TestProfile_UpdateRefreshesCache(t *testing.T) {
	e := newEnv(t)
	signedIn(t, e)
	var sent models.WorkerProfile
	e.handle("PUT /api/workers/profile/", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &sent)
		writeJSON(w, http.StatusOK, string(b))
	})
	profiles := NewProfileService(e.api, e.queue, time.Hour)
	ctx := context.Background()

	updated, err := profiles.Update(ctx, models.WorkerProfile{UserID: 7, Bio: "Electrician", HourlyRate: 55})
	require.NoError(t, err)
	assert.Equal(t, "Electrician", updated.Bio)
	assert.Equal(t, "Electrician", sent.Bio)

	e.monitor.SetOnline(ctx, false)
	cached, err := profiles.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 55.0, cached.HourlyRate)
}

func TestProfile_UpdateRejectsInvalidLocally(t *testing.T) {
	e := newEnv(t)
	signedIn(t, e)
	profiles := NewProfileService(e.api, e.queue, time.Hour)

	_, err := profiles.Update(context.Background(), models.WorkerProfile{UserID: 7, HourlyRate: -1})
	require.ErrorIs(t, err, models.ErrInvalid)
	assert.Zero(t, e.backend.requests.Load())
}

func TestProfile_UpdateWhileUnreachableIsNotQueued(t *testing.T) {
	e := newEnv(t)
	signedIn(t, e)
	e.backend.srv.Close()
	profiles := NewProfileService(e.api, e.queue, time.Hour)
	ctx := context.Background()

	_, err := profiles.Update(ctx, models.WorkerProfile{UserID: 7, Bio: "x"})
	require.ErrorIs(t, err, transport.ErrUnavailable)
	pending, err := e.queue.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
