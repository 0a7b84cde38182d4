package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store define donde se guardan los archivos de resume subidos.
type Store interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
}

// LocalStore guarda archivos en disco y devuelve una URL publica servible
// por el propio servicio.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStore) Save(_ context.Context, name string, content []byte) (string, error) {
	name = filepath.Base(name)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write resume: %w", err)
	}
	return s.baseURL + "/uploads/resumes/" + name, nil
}

// MockStore permite tests sin tocar disco.
type MockStore struct {
	Saved map[string][]byte
	Err   error
}

func (m *MockStore) Save(_ context.Context, name string, content []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Saved == nil {
		m.Saved = make(map[string][]byte)
	}
	m.Saved[name] = content
	return "https://files.test/" + name, nil
}
