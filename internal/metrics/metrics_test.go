package metrics

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "network", StatusLabel(0))
	assert.Equal(t, "503", StatusLabel(503))
}

func TestRegister_Twice_DoesNotPanic(t *testing.T) {
	require.NotPanics(t, Register)
	require.NotPanics(t, Register)
}

func TestHandler_ExposesCollectors(t *testing.T) {
	Register()
	before := testutil.ToFloat64(QueueDropped)
	QueueDropped.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(QueueDropped))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "marketclient_offline_queue_dropped_total"))
}

func TestServe_StopsWithContext(t *testing.T) {
	Register()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, logging.NewDiscard()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_BadAddress(t *testing.T) {
	assert.Error(t, Serve(context.Background(), "not-an-address", logging.NewDiscard()))
}
