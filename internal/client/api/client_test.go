package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCreds string

func (s staticCreds) Token(context.Context) (string, error) { return string(s), nil }
func (s staticCreds) ClearAuth(context.Context) error       { return nil }

const userJSON = `{"id":7,"email":"ann@example.com","first_name":"Ann","last_name":"Lee","user_type":"worker"}`

func newTestClient(t *testing.T, mux *http.ServeMux, token string) Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tc, err := transport.New(transport.Options{
		BaseURL: srv.URL + "/api",
		Policy:  transport.DefaultPolicy{BaseDelay: time.Millisecond, MaxRetries: 1},
		HTTP:    srv.Client(),
	}, staticCreds(token), logging.NewDiscard())
	require.NoError(t, err)
	return NewClient(tc)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "ann@example.com" || req.Password != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, `{"token":"tok","user":`+userJSON+`}`)
	})
	c := newTestClient(t, mux, "")

	resp, err := c.Login(context.Background(), "ann@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, int64(7), resp.User.ID)
	assert.Equal(t, models.Credential{Token: "tok", UserID: 7}, resp.Credential())

	_, err = c.Login(context.Background(), "ann@example.com", "wrong")
	assert.ErrorIs(t, err, transport.ErrClient)
}

func TestLogin_ResponseWithoutUserIsMalformed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"token":"tok"}`)
	})
	c := newTestClient(t, mux, "")

	_, err := c.Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, transport.ErrMalformedResponse)
}

func TestRegister(t *testing.T) {
	var got models.RegisterRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, `{"token":"new","user":`+userJSON+`}`)
	})
	c := newTestClient(t, mux, "")

	resp, err := c.Register(context.Background(), models.RegisterRequest{
		Email: "ann@example.com", Password: "pw", UserType: models.UserTypeWorker,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", resp.Token)
	assert.Equal(t, models.UserTypeWorker, got.UserType)
}

func TestProtectedCallsSendToken(t *testing.T) {
	var auth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, userJSON)
	})
	c := newTestClient(t, mux, "abc")

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.FullName())
	assert.Equal(t, "Token abc", auth)
}

func TestProtectedCallsWithoutToken(t *testing.T) {
	c := newTestClient(t, http.NewServeMux(), "")
	ctx := context.Background()

	_, err := c.Me(ctx)
	assert.ErrorIs(t, err, transport.ErrNotAuthenticated)
	_, err = c.AvailableJobs(ctx, 1)
	assert.ErrorIs(t, err, transport.ErrNotAuthenticated)
	assert.ErrorIs(t, c.Logout(ctx), transport.ErrNotAuthenticated)
}

func TestWorkerProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/workers/profile/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"user_id":7,"bio":"plumber","skills":["pipes"],"hourly_rate":40}`)
	})
	mux.HandleFunc("PUT /api/workers/profile/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		writeJSON(w, string(body))
	})
	c := newTestClient(t, mux, "abc")
	ctx := context.Background()

	p, err := c.WorkerProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pipes"}, p.Skills)

	p.Bio = "plumber and tiler"
	updated, err := c.UpdateWorkerProfile(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, "plumber and tiler", updated.Bio)
}

func TestJobs(t *testing.T) {
	const list = `{"count":1,"results":[{"id":3,"title":"Fix sink","status":"open"}]}`
	var page string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/workers/jobs/", func(w http.ResponseWriter, r *http.Request) {
		page = r.URL.Query().Get("page")
		writeJSON(w, list)
	})
	mux.HandleFunc("GET /api/client/jobs/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"count":0,"results":[]}`)
	})
	mux.HandleFunc("POST /api/client/jobs/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, `{"id":10,"title":"Paint fence","status":"open"}`)
	})
	mux.HandleFunc("GET /api/jobs/3/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"id":3,"title":"Fix sink","status":"assigned"}`)
	})
	mux.HandleFunc("POST /api/jobs/3/apply/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"id":1,"job_id":3,"worker_id":7,"status":"pending"}`)
	})
	c := newTestClient(t, mux, "abc")
	ctx := context.Background()

	jobs, err := c.AvailableJobs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs.Results, 1)
	assert.Equal(t, "2", page)

	_, err = c.AvailableJobs(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, page)

	mine, err := c.ClientJobs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, mine.Results)

	job, err := c.CreateJob(ctx, models.CreateJobRequest{Title: "Paint fence"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), job.ID)

	job, err = c.Job(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusAssigned, job.Status)

	app, err := c.ApplyToJob(ctx, 3, models.ApplyRequest{CoverLetter: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), app.JobID)
}

func TestJobs_InvalidItemIsMalformed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/workers/jobs/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"count":1,"results":[{"id":3,"title":"","status":"open"}]}`)
	})
	c := newTestClient(t, mux, "abc")

	_, err := c.AvailableJobs(context.Background(), 1)
	assert.ErrorIs(t, err, transport.ErrMalformedResponse)
}

func TestNotifications(t *testing.T) {
	var patched models.MarkReadRequest
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notifications/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"unread_count":2,"results":[{"id":1,"title":"New job"},{"id":2,"title":"Hired"}]}`)
	})
	mux.HandleFunc("PATCH /api/notifications/2/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&patched)
		writeJSON(w, `{"id":2,"is_read":true}`)
	})
	c := newTestClient(t, mux, "abc")
	ctx := context.Background()

	list, err := c.Notifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, list.UnreadCount)
	assert.Len(t, list.Results, 2)

	require.NoError(t, c.MarkNotificationRead(ctx, 2))
	assert.True(t, patched.IsRead)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/jobs/5/", JobPath(5))
	assert.Equal(t, "/jobs/5/apply/", ApplyPath(5))
	assert.Equal(t, "/notifications/9/", NotificationPath(9))
}
