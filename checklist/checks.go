package checklist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

const (
	DefaultCommandTimeout = 5 * time.Minute
	DefaultHTTPTimeout    = 10 * time.Second
)

// CommandCheck passes when the command exits with status 0. A non-zero exit
// or a timeout fails the subtest; a command that cannot be started is an error.
type CommandCheck struct {
	Args    []string
	Dir     string
	Env     []string
	Timeout time.Duration
	Log     log.Logger
}

func (c *CommandCheck) Check() (types.Result, error) {
	if len(c.Args) == 0 {
		return types.Failed, types.NewInvalidArgumentError("args", "command must not be empty")
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	cmd.Dir = c.Dir
	// children holding the output pipes must not outlive the timeout
	cmd.WaitDelay = time.Second
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	out, err := cmd.CombinedOutput()
	if err == nil {
		return types.Passed, nil
	}
	if ctx.Err() != nil {
		orRoot(c.Log).Warn("Command timed out", "args", c.Args, "timeout", timeout)
		return types.Failed, nil
	}
	exitErr := &exec.ExitError{}
	if errors.As(err, &exitErr) {
		orRoot(c.Log).Debug("Command failed", "args", c.Args, "exit_code", exitErr.ExitCode(), "output", string(out))
		return types.Failed, nil
	}
	return types.Failed, fmt.Errorf("failed to run command %v: %w", c.Args, err)
}

// FileCheck passes when the path exists, or when it is missing if Absent is set
type FileCheck struct {
	Path   string
	Absent bool
}

func (c *FileCheck) Check() (types.Result, error) {
	_, err := os.Stat(c.Path)
	switch {
	case err == nil:
		return types.ResultFromBool(!c.Absent), nil
	case errors.Is(err, os.ErrNotExist):
		return types.ResultFromBool(c.Absent), nil
	default:
		return types.Failed, fmt.Errorf("failed to stat %s: %w", c.Path, err)
	}
}

// HTTPCheck passes when a GET of URL answers with the expected status.
// Transport failures fail the subtest.
type HTTPCheck struct {
	URL     string
	Status  int
	Timeout time.Duration
	Client  *http.Client
	Log     log.Logger
}

func (c *HTTPCheck) Check() (types.Result, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	want := c.Status
	if want == 0 {
		want = http.StatusOK
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return types.Failed, types.NewInvalidArgumentError("url", err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		orRoot(c.Log).Debug("HTTP check request failed", "url", c.URL, "err", err)
		return types.Failed, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		orRoot(c.Log).Debug("HTTP check got unexpected status", "url", c.URL, "status", resp.StatusCode, "want", want)
		return types.Failed, nil
	}
	return types.Passed, nil
}

func orRoot(l log.Logger) log.Logger {
	if l == nil {
		return log.Root()
	}
	return l
}
