// Package storage provides the key-value slot the chat is persisted to.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apierrors "github.com/diogo/echochat/internal/errors"
)

// KV is a string key-value store with local-storage semantics
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set overwrites the value stored under key.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

// FileKV stores each key as a file inside a directory
type FileKV struct {
	dir string
	mu  sync.RWMutex
}

// NewFileKV creates a file-backed store under baseDir/storage
func NewFileKV(baseDir string) (*FileKV, error) {
	dir := filepath.Join(baseDir, "storage")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

// Dir returns the directory holding the slot files.
func (s *FileKV) Dir() string {
	return s.dir
}

// Get reads the value stored under key
func (s *FileKV) Get(key string) (string, bool, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return "", false, apierrors.NewStorageError("get", key, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, apierrors.NewStorageError("get", key, err)
	}
	return string(data), true, nil
}

// Set writes value under key, replacing the file atomically
func (s *FileKV) Set(key, value string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return apierrors.NewStorageError("set", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return apierrors.NewStorageError("set", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return apierrors.NewStorageError("set", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return apierrors.NewStorageError("set", key, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return apierrors.NewStorageError("set", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return apierrors.NewStorageError("set", key, err)
	}
	return nil
}

// Delete removes the file for key
func (s *FileKV) Delete(key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return apierrors.NewStorageError("delete", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apierrors.NewStorageError("delete", key, err)
	}
	return nil
}

func (s *FileKV) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// MemoryKV is an in-process store; nothing survives the process
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryKV creates an empty in-memory store
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get returns the value for key
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete removes key
func (m *MemoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
