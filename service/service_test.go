package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-checker/harness"
	"github.com/ethereum-optimism/infra/op-checker/reporting"
)

func newTestServer(t *testing.T) (*httptest.Server, *reporting.Store) {
	t.Helper()
	store, err := reporting.NewStore(8)
	require.NoError(t, err)
	store.Put(reporting.Entry{
		RunID:   "run-1",
		Path:    "/tmp/network/network.txt",
		Report:  harness.Report{Description: "network", Passed: 1, Total: 2, Digest: "abcd"},
		Content: "full report\n",
	})
	server := httptest.NewServer(NewHealthzServer(store, nil).Handler())
	t.Cleanup(server.Close)
	return server, store
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReportsList(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/reports")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var entries []reporting.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "network", entries[0].Report.Description)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Empty(t, entries[0].Content, "content is only served per unit")
}

func TestReportByUnit(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/reports/network")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abcd", resp.Header.Get("X-Unit-Digest"))

	missing, err := http.Get(server.URL + "/reports/unknown")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestReportsWithoutStore(t *testing.T) {
	server := httptest.NewServer(NewHealthzServer(nil, nil).Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/reports/network")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServiceStartShutdown(t *testing.T) {
	svc := New(Config{
		HealthzAddr: "127.0.0.1:0",
		MetricsAddr: "127.0.0.1:0",
	})
	svc.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	svc.Shutdown(ctx)
	assert.NoError(t, svc.Wait())
}
