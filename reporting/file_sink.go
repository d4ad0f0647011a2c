package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/ethereum-optimism/infra/op-checker/types"
)

const reportExt = ".txt"

// FileSink writes one report file per unit under
// <baseDir>/<description>/<description>.txt
type FileSink struct {
	baseDir string
	log     log.Logger
	rename  func(oldpath, newpath string) error

	mu sync.Mutex
	// reserved holds files created by Prepare that have not been written yet
	reserved map[string]struct{}
}

// NewFileSink creates a sink rooted at baseDir, which must be an existing directory
func NewFileSink(baseDir string, logger log.Logger) (*FileSink, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, types.NewInvalidArgumentError("baseDir", "must not be empty")
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat output directory %s", baseDir)
	}
	if !info.IsDir() {
		return nil, types.NewInvalidArgumentError("baseDir", fmt.Sprintf("%s is not a directory", baseDir))
	}
	if logger == nil {
		logger = log.New()
	}
	return &FileSink{
		baseDir:  baseDir,
		log:      logger,
		rename:   os.Rename,
		reserved: make(map[string]struct{}),
	}, nil
}

// BaseDir returns the directory the sink writes under
func (s *FileSink) BaseDir() string {
	return s.baseDir
}

// Prepare resolves the file a unit report goes to, creating the unit
// directory on first use. With overwrite the canonical file is returned;
// otherwise an existing canonical file is kept and the first free
// "<description>(N).txt" is reserved.
func (s *FileSink) Prepare(description string, overwrite bool) (string, error) {
	name, err := fileName(description)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.baseDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "failed to create report directory %s", dir)
	}

	stem := filepath.Join(dir, name)
	canonical := stem + reportExt
	created, err := reserve(canonical)
	if err != nil {
		return "", err
	}
	if created {
		s.track(canonical)
	}
	if created || overwrite {
		return canonical, nil
	}

	for i := 1; ; i++ {
		path := fmt.Sprintf("%s(%d)%s", stem, i, reportExt)
		created, err := reserve(path)
		if err != nil {
			return "", err
		}
		if created {
			s.track(path)
			s.log.Debug("Reserved indexed report file", "unit", description, "path", path)
			return path, nil
		}
	}
}

// Write replaces the content of path with report. The content is written to
// a temporary file in the same directory first so readers never observe a
// partially written report. When the write fails, a file that Prepare
// reserved for it is removed again; an earlier report at path is kept.
func (s *FileSink) Write(path string, report string) (err error) {
	defer func() {
		reserved := s.untrack(path)
		if err != nil && reserved {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				s.log.Warn("Failed to remove reserved report file", "path", path, "err", rmErr)
			}
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary report for %s", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.WriteString(report); err != nil {
		tmp.Close() //nolint:errcheck
		return errors.Wrapf(err, "failed to write report %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close report %s", path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.Wrapf(err, "failed to set permissions on report %s", path)
	}
	if err := s.rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "failed to move report into place at %s", path)
	}
	s.log.Debug("Wrote report", "path", path, "bytes", len(report))
	return nil
}

func (s *FileSink) track(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reserved[path] = struct{}{}
}

// untrack forgets path and reports whether it was still reserved
func (s *FileSink) untrack(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reserved[path]
	delete(s.reserved, path)
	return ok
}

// reserve creates path if it does not exist. It reports whether this call
// created the file.
func reserve(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to create report file %s", path)
	}
	if err := f.Close(); err != nil {
		return false, errors.Wrapf(err, "failed to close report file %s", path)
	}
	return true, nil
}

// fileName checks that a unit description can be used verbatim as a single
// path element. Descriptions are never normalized, so distinct descriptions
// always map to distinct files.
func fileName(description string) (string, error) {
	name := description
	switch {
	case strings.TrimSpace(name) == "":
		return "", types.NewInvalidArgumentError("description", "must not be empty")
	case stripansi.Strip(name) != name:
		return "", types.NewInvalidArgumentError("description", fmt.Sprintf("%q contains escape sequences", name))
	case strings.TrimSpace(name) != name:
		return "", types.NewInvalidArgumentError("description", fmt.Sprintf("%q has leading or trailing whitespace", name))
	case name == "." || name == "..":
		return "", types.NewInvalidArgumentError("description", fmt.Sprintf("%q is not a valid file name", name))
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator):
		return "", types.NewInvalidArgumentError("description", fmt.Sprintf("%q contains a path separator", name))
	case strings.ContainsRune(name, 0):
		return "", types.NewInvalidArgumentError("description", "contains a NUL byte")
	}
	return name, nil
}
