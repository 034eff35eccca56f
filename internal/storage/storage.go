// Package storage persists uploaded blobs.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// Store writes a named blob and returns its public URL.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Local writes files under Dir and serves them at Prefix.
type Local struct {
	Dir    string
	Prefix string
}

func NewLocal(dir, prefix string) *Local {
	return &Local{Dir: dir, Prefix: prefix}
}

// Save creates the directory if needed and refuses to overwrite an existing
// file. A partial file is removed when copying fails.
func (l *Local) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	p := filepath.Join(l.Dir, name)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(p)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(p)
		return "", fmt.Errorf("close file: %w", err)
	}
	return path.Join(l.Prefix, name), nil
}
