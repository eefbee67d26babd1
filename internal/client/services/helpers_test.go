package services

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/api"
	"github.com/dmitrijs2005/marketclient/internal/client/credentials"
	"github.com/dmitrijs2005/marketclient/internal/client/offline"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/dmitrijs2005/marketclient/internal/testutil"
	"github.com/stretchr/testify/require"
)

const userJSON = `{"id":7,"email":"ann@example.com","first_name":"Ann","last_name":"Lee","user_type":"worker"}`

// backend is a fake marketplace server. Handlers count every request that
// reaches it.
type backend struct {
	mux      *http.ServeMux
	srv      *httptest.Server
	requests atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{mux: http.NewServeMux()}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

type env struct {
	backend   *backend
	creds     *credentials.Store
	transport *transport.Client
	api       api.Client
	monitor   *offline.Monitor
	queue     *offline.Queue
	expired   atomic.Int32
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{backend: newBackend(t)}
	repo := testutil.NewKV(t)
	log := logging.NewDiscard()

	e.creds = credentials.NewStore(testutil.NewMemorySecrets(), repo, "marketclient-test", log)

	tc, err := transport.New(transport.Options{
		BaseURL: e.backend.srv.URL + "/api",
		Policy:  transport.DefaultPolicy{BaseDelay: time.Millisecond, MaxRetries: 3},
		HTTP:    e.backend.srv.Client(),
	}, e.creds, log)
	require.NoError(t, err)
	tc.OnAuthExpired(func() { e.expired.Add(1) })
	e.transport = tc
	e.api = api.NewClient(tc)

	e.monitor = offline.NewMonitor(tc, time.Second, log)
	e.queue = offline.NewQueue(repo, tc, e.monitor, offline.QueueOptions{}, log)
	return e
}

func (e *env) handle(pattern string, h http.HandlerFunc) {
	e.backend.mux.HandleFunc(pattern, h)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
