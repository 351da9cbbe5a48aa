// Package media stores uploaded images and hands back their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists an image and returns a durable URL for it.
type Storage interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// LocalStorage writes files under root; main serves root at /uploads.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) Save(_ context.Context, folder, filename string, r io.Reader) (string, error) {
	folder = filepath.Base(folder)
	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.baseURL + "/uploads/" + folder + "/" + name, nil
}

// Delete removes a file previously returned by Save. URLs from elsewhere are ignored.
func (s *LocalStorage) Delete(_ context.Context, url string) error {
	prefix := s.baseURL + "/uploads/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	rel := filepath.Clean(strings.TrimPrefix(url, prefix))
	if strings.HasPrefix(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, rel))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
