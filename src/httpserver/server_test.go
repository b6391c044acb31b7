package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jenkins-mcp/src/logger"
	"jenkins-mcp/src/metrics"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRoutes(t *testing.T) {
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mcp:" + r.Method))
	})
	srv := New("127.0.0.1:0", mcpHandler, logger.NewSilentLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	metrics.ObserveToolCall("probe", "ok", time.Millisecond)

	status, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, body = get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `jenkins_mcp_tool_calls_total{outcome="ok",tool="probe"}`)

	status, body = get(t, ts.URL+"/mcp")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "mcp:GET", body)

	status, _ = get(t, ts.URL+"/unknown")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRoutes_WithoutMCP(t *testing.T) {
	srv := New("127.0.0.1:0", nil, logger.NewSilentLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	status, _ := get(t, ts.URL+"/mcp")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(listener.Addr().String(), nil, logger.NewSilentLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	url := "http://" + listener.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = http.Get(url)
	assert.Error(t, err)
}
