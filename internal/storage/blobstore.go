package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge signals a blob exceeding the configured ceiling.
var ErrTooLarge = errors.New("blob exceeds size limit")

// ErrExtension signals a disallowed file extension.
var ErrExtension = errors.New("file extension not allowed")

var allowedExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".pdf": {},
	".txt": {}, ".log": {}, ".csv": {}, ".mp4": {},
}

// BlobStore writes attachment bytes to local disk. Stored names carry a
// random prefix so uploads with colliding filenames never overwrite
// each other.
type BlobStore struct {
	dir      string
	maxBytes int64
}

// NewBlobStore prepares the upload directory.
func NewBlobStore(dir string, maxBytes int64) (*BlobStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &BlobStore{dir: abs, maxBytes: maxBytes}, nil
}

// MaxBytes returns the configured size ceiling.
func (s *BlobStore) MaxBytes() int64 {
	return s.maxBytes
}

// Allowed reports whether the filename's extension is accepted.
func (s *BlobStore) Allowed(filename string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Save streams the reader to disk under a disambiguated name and
// returns the stored name, detected mime type, and byte count.
func (s *BlobStore) Save(filename string, r io.Reader) (stored, mimeType string, size int64, err error) {
	safe := sanitize(filename)
	if safe == "" {
		return "", "", 0, ErrExtension
	}
	if !s.Allowed(safe) {
		return "", "", 0, ErrExtension
	}

	stored = fmt.Sprintf("%s_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:16], safe)
	path := filepath.Join(s.dir, stored)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", 0, err
	}
	defer f.Close()

	// One byte past the ceiling proves the blob is too large.
	size, err = io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		_ = os.Remove(path)
		return "", "", 0, err
	}
	if size > s.maxBytes {
		_ = os.Remove(path)
		return "", "", 0, ErrTooLarge
	}

	mimeType = mime.TypeByExtension(filepath.Ext(safe))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return stored, mimeType, size, nil
}

// Resolve maps a stored name to an absolute path, refusing anything
// that escapes the upload directory.
func (s *BlobStore) Resolve(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", os.ErrNotExist
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// sanitize strips any path components from a client-supplied filename.
func sanitize(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, `/`))
	base = strings.TrimSpace(base)
	if base == "." || base == ".." {
		return ""
	}
	return base
}
