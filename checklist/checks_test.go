package checklist

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

func TestFileCheck(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(present, nil, 0644))
	missing := filepath.Join(dir, "missing")

	tests := []struct {
		name     string
		check    FileCheck
		expected types.Result
	}{
		{name: "present exists", check: FileCheck{Path: present}, expected: types.Passed},
		{name: "missing exists", check: FileCheck{Path: missing}, expected: types.Failed},
		{name: "present absent", check: FileCheck{Path: present, Absent: true}, expected: types.Failed},
		{name: "missing absent", check: FileCheck{Path: missing, Absent: true}, expected: types.Passed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.check.Check()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestCommandCheck(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	tests := []struct {
		name     string
		check    CommandCheck
		expected types.Result
	}{
		{name: "exit zero", check: CommandCheck{Args: []string{"sh", "-c", "exit 0"}}, expected: types.Passed},
		{name: "exit non-zero", check: CommandCheck{Args: []string{"sh", "-c", "exit 3"}}, expected: types.Failed},
		{name: "env is passed", check: CommandCheck{Args: []string{"sh", "-c", `test "$CHECK_VALUE" = ok`}, Env: []string{"CHECK_VALUE=ok"}}, expected: types.Passed},
		{name: "timeout fails", check: CommandCheck{Args: []string{"sh", "-c", "exec sleep 5"}, Timeout: 50 * time.Millisecond}, expected: types.Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.check.Check()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestCommandCheckErrors(t *testing.T) {
	_, err := (&CommandCheck{}).Check()
	assert.True(t, types.IsInvalidArgument(err))

	_, err = (&CommandCheck{Args: []string{filepath.Join(t.TempDir(), "no-such-binary")}}).Check()
	require.Error(t, err)
}

func TestHTTPCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("OK")) //nolint:errcheck
	}))
	defer server.Close()

	tests := []struct {
		name     string
		check    HTTPCheck
		expected types.Result
	}{
		{name: "default status", check: HTTPCheck{URL: server.URL + "/healthz"}, expected: types.Passed},
		{name: "unexpected status", check: HTTPCheck{URL: server.URL + "/missing"}, expected: types.Failed},
		{name: "expected not found", check: HTTPCheck{URL: server.URL + "/missing", Status: http.StatusNotFound}, expected: types.Passed},
		{name: "unreachable", check: HTTPCheck{URL: "http://127.0.0.1:1/", Timeout: time.Second}, expected: types.Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check.Client = server.Client()
			res, err := tt.check.Check()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}

	_, err := (&HTTPCheck{URL: "://bad"}).Check()
	assert.True(t, types.IsInvalidArgument(err))
}
