package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const URLPrefix = "/uploads/"

var ErrOutsideRoot = errors.New("path escapes upload root")

// LocalStorage writes files below Root, partitioned by content folder.
type LocalStorage struct {
	Root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &LocalStorage{Root: abs}, nil
}

func (s *LocalStorage) Save(_ context.Context, folder string, file *multipart.FileHeader) (string, error) {
	dir := filepath.Join(s.Root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload folder: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := UniqueName(file.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return URLPrefix + path.Join(folder, name), nil
}

// Delete removes a file previously returned by Save. URLs that do not point
// into this storage are ignored, as are files that are already gone.
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	p, err := s.Resolve(strings.TrimPrefix(url, URLPrefix))
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", url, err)
	}
	return nil
}

// Resolve maps a path relative to the upload root onto the filesystem,
// rejecting anything that would leave the root.
func (s *LocalStorage) Resolve(rel string) (string, error) {
	cleaned := filepath.Clean("/" + filepath.FromSlash(rel))
	full := filepath.Join(s.Root, cleaned)
	if full == s.Root || !strings.HasPrefix(full, s.Root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}
