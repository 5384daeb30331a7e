package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRun creates a dated run directory with an index.html inside outputDir
func writeRun(t *testing.T, outputDir, date, body string) {
	t.Helper()
	dir := filepath.Join(outputDir, date)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(body), 0o600))
}

func testServer(t *testing.T, outputDir string) *httptest.Server {
	t.Helper()
	s := New(Params{Listen: ":0", OutputDir: outputDir, Version: "test"})
	ts := httptest.NewServer(s.router)
	t.Cleanup(ts.Close)
	return ts
}

func TestServer_Status(t *testing.T) {
	ts := testServer(t, t.TempDir())

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
}

func TestServer_Ping(t *testing.T) {
	ts := testServer(t, t.TempDir())

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}

func TestServer_Runs(t *testing.T) {
	outputDir := t.TempDir()
	writeRun(t, outputDir, "2026-08-24", "<html>old</html>")
	writeRun(t, outputDir, "2026-08-25", "<html>new</html>")
	require.NoError(t, os.MkdirAll(filepath.Join(outputDir, "not-a-date"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(outputDir, "2026-08-23"), 0o750)) // no index.html

	ts := testServer(t, outputDir)

	resp, err := http.Get(ts.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload struct {
		Runs []string `json:"runs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, []string{"2026-08-25", "2026-08-24"}, payload.Runs)
}

func TestServer_LatestRedirect(t *testing.T) {
	outputDir := t.TempDir()
	writeRun(t, outputDir, "2026-08-24", "<html>old</html>")
	writeRun(t, outputDir, "2026-08-25", "<html>new digest</html>")

	ts := testServer(t, outputDir)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	// client follows the redirect to the newest run
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html>new digest</html>", string(body))
	assert.Contains(t, resp.Request.URL.Path, "2026-08-25")
}

func TestServer_LatestNoRuns(t *testing.T) {
	ts := testServer(t, t.TempDir())

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StaticFiles(t *testing.T) {
	outputDir := t.TempDir()
	writeRun(t, outputDir, "2026-08-25", "<html>digest</html>")
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "2026-08-25", "Comic.png"), []byte("png bytes"), 0o600))

	ts := testServer(t, outputDir)

	resp, err := http.Get(ts.URL + "/2026-08-25/Comic.png")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(body))
}

func TestServer_Run(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	outputDir := t.TempDir()
	writeRun(t, outputDir, "2026-08-25", "<html>digest</html>")

	s := New(Params{Listen: fmt.Sprintf("127.0.0.1:%d", port), OutputDir: outputDir, Version: "test"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// wait for the server to come up
	var resp *http.Response
	require.Eventually(t, func() bool {
		var rerr error
		resp, rerr = http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
		return rerr == nil
	}, 2*time.Second, 20*time.Millisecond)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
