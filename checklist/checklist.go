// Package checklist builds harness units from a declarative YAML, TOML or
// JSON file.
package checklist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-checker/digest"
	"github.com/ethereum-optimism/infra/op-checker/harness"
	"github.com/ethereum-optimism/infra/op-checker/types"
)

// File is the decoded form of a checklist
type File struct {
	Width        int    `json:"width,omitempty"`
	SubtestWidth int    `json:"subtest_width,omitempty"`
	Units        []Unit `json:"units"`
}

type Unit struct {
	Description string `json:"description"`
	Width       int    `json:"width,omitempty"`
	Tests       []Test `json:"tests,omitempty"`
}

type Test struct {
	Description string    `json:"description"`
	Width       int       `json:"width,omitempty"`
	Subtests    []Subtest `json:"subtests,omitempty"`
}

type Subtest struct {
	Description string       `json:"description"`
	Width       int          `json:"width,omitempty"`
	Command     *CommandSpec `json:"command,omitempty"`
	File        *FileSpec    `json:"file,omitempty"`
	HTTP        *HTTPSpec    `json:"http,omitempty"`
}

type CommandSpec struct {
	Args    []string `json:"args"`
	Dir     string   `json:"dir,omitempty"`
	Env     []string `json:"env,omitempty"`
	Timeout string   `json:"timeout,omitempty"`
}

type FileSpec struct {
	Path   string `json:"path"`
	Absent bool   `json:"absent,omitempty"`
}

type HTTPSpec struct {
	URL     string `json:"url"`
	Status  int    `json:"status,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// Options controls how units are built
type Options struct {
	Log        log.Logger
	DigestSize digest.Size
	Clock      harness.Clock
	HTTPClient *http.Client
	// BaseDir resolves relative file paths and command directories
	BaseDir string
}

// Load reads, validates and builds the checklist at path. The format is
// chosen by extension.
func Load(path string, opts Options) ([]*harness.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read checklist %s", path)
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	units, err := Parse(data, filepath.Ext(path), opts)
	if err != nil {
		return nil, errors.Wrapf(err, "checklist %s", path)
	}
	return units, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml", ".toml"
// or ".json") and builds its units.
func Parse(data []byte, ext string, opts Options) ([]*harness.Unit, error) {
	raw, err := toJSON(data, ext)
	if err != nil {
		return nil, err
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var f File
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode checklist: %w", err)
	}
	return Build(f, opts)
}

// toJSON normalizes every supported format into JSON so that a single
// schema and a single set of struct tags apply.
func toJSON(data []byte, ext string) ([]byte, error) {
	var doc any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".toml":
		m := map[string]any{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		doc = m
	case ".json":
		return data, nil
	default:
		return nil, types.NewInvalidArgumentError("format", fmt.Sprintf("unsupported checklist extension %q", ext))
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize checklist: %w", err)
	}
	return raw, nil
}

// Build turns a decoded checklist into runnable units
func Build(f File, opts Options) ([]*harness.Unit, error) {
	if opts.Log == nil {
		opts.Log = log.New()
	}
	if opts.DigestSize == 0 {
		opts.DigestSize = digest.Default
	}
	if opts.Clock == nil {
		opts.Clock = harness.SystemClock
	}

	units := make([]*harness.Unit, 0, len(f.Units))
	for _, uc := range f.Units {
		width := firstPositive(uc.Width, f.Width, harness.MinWidth)
		unit, err := harness.NewUnit(uc.Description,
			harness.WithUnitWidth(width),
			harness.WithClock(opts.Clock),
			harness.WithDigestSize(opts.DigestSize),
		)
		if err != nil {
			return nil, fmt.Errorf("unit %q: %w", uc.Description, err)
		}
		for _, tc := range uc.Tests {
			test, err := buildTest(tc, f, opts)
			if err != nil {
				return nil, fmt.Errorf("unit %q: %w", uc.Description, err)
			}
			if err := unit.AddTest(test); err != nil {
				return nil, err
			}
		}
		units = append(units, unit)
	}
	opts.Log.Debug("Checklist built", "units", len(units))
	return units, nil
}

func buildTest(tc Test, f File, opts Options) (*harness.Test, error) {
	test, err := harness.NewTest(tc.Description, harness.WithTestWidth(firstPositive(tc.Width, f.Width, harness.MinWidth)))
	if err != nil {
		return nil, fmt.Errorf("test %q: %w", tc.Description, err)
	}
	for _, sc := range tc.Subtests {
		check, err := buildCheck(sc, opts)
		if err != nil {
			return nil, fmt.Errorf("test %q subtest %q: %w", tc.Description, sc.Description, err)
		}
		width := firstPositive(sc.Width, f.SubtestWidth, harness.DefaultSubtestWidth)
		sub, err := harness.NewSubtest(sc.Description, check, harness.WithSubtestWidth(width))
		if err != nil {
			return nil, fmt.Errorf("test %q: %w", tc.Description, err)
		}
		if err := test.AddSubtest(sub); err != nil {
			return nil, err
		}
	}
	return test, nil
}

func buildCheck(sc Subtest, opts Options) (harness.Check, error) {
	switch {
	case sc.Command != nil:
		timeout, err := parseTimeout(sc.Command.Timeout)
		if err != nil {
			return nil, err
		}
		return &CommandCheck{
			Args:    sc.Command.Args,
			Dir:     resolve(opts.BaseDir, sc.Command.Dir),
			Env:     sc.Command.Env,
			Timeout: timeout,
			Log:     opts.Log,
		}, nil
	case sc.File != nil:
		return &FileCheck{
			Path:   resolve(opts.BaseDir, sc.File.Path),
			Absent: sc.File.Absent,
		}, nil
	case sc.HTTP != nil:
		timeout, err := parseTimeout(sc.HTTP.Timeout)
		if err != nil {
			return nil, err
		}
		return &HTTPCheck{
			URL:     sc.HTTP.URL,
			Status:  sc.HTTP.Status,
			Timeout: timeout,
			Client:  opts.HTTPClient,
			Log:     opts.Log,
		}, nil
	}
	return nil, types.NewInvalidArgumentError("subtest", "exactly one of command, file or http is required")
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, types.NewInvalidArgumentError("timeout", err.Error())
	}
	return d, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
