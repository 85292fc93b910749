package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/msaleh-dev/catalog-backend/pkg/errors"
)

// Store writes product images to a local directory. Only generated
// filenames ever leave this package; callers never handle paths.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewStore creates the upload directory if needed and returns a store
// bound to it.
func NewStore(dir string, maxUploadMB int) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload directory")
	}
	maxBytes := int64(maxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 20 * 1024 * 1024
	}
	return &Store{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save streams the upload to disk under a timestamp-derived name,
// preserving the original extension. It returns the generated filename.
func (s *Store) Save(src io.Reader, originalName string) (string, error) {
	ext := sanitizeExt(filepath.Ext(originalName))

	var (
		filename string
		dst      *os.File
		err      error
	)
	base := s.now().UnixMilli()
	for attempt := 0; attempt < 5; attempt++ {
		filename = fmt.Sprintf("%d%s", base+int64(attempt), ext)
		dst, err = os.OpenFile(filepath.Join(s.dir, filename), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload file")
		}
	}
	if dst == nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload file")
	}

	written, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, filename))
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload file")
	}
	if written > s.maxBytes {
		_ = os.Remove(filepath.Join(s.dir, filename))
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	return filename, nil
}

// Remove deletes a stored file. Removing a file that is already gone is
// not an error.
func (s *Store) Remove(filename string) error {
	clean, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove upload file")
	}
	return nil
}

// Exists reports whether a stored file is present on disk.
func (s *Store) Exists(filename string) (bool, error) {
	clean, err := s.resolve(filename)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(clean); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stat upload file")
	}
	return true, nil
}

// resolve joins the filename under the store dir, rejecting anything
// that is not a bare filename.
func (s *Store) resolve(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid filename")
	}
	return filepath.Join(s.dir, name), nil
}

func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if len(ext) > 10 {
		return ""
	}
	return ext
}
