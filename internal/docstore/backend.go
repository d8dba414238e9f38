package docstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Backend loads and saves the serialized document identified by name.
//
// Load must return an error matching fs.ErrNotExist when name was never
// saved.
type Backend interface {
	Load(name string) ([]byte, error)
	Save(name string, data []byte) error
}

// FileBackend stores documents as files; name is the file path.
type FileBackend struct{}

// Load reads the file.
func (FileBackend) Load(name string) ([]byte, error) {
	data, err := os.ReadFile(name) //nolint:gosec // G304: name is the document path chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Save atomically replaces the file with data, creating parent directories as
// needed.
func (FileBackend) Save(name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()
	if _, err := f.Write(data); err != nil {
		return errors.Join(fmt.Errorf("failed to write %s: %w", name, err), f.Close(), os.Remove(tmpPath))
	}
	if err := f.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // G302: documents are not secrets
		return errors.Join(fmt.Errorf("failed to chmod temp file: %w", err), os.Remove(tmpPath))
	}
	if err := os.Rename(tmpPath, name); err != nil {
		return errors.Join(fmt.Errorf("failed to rename temp file to %s: %w", name, err), os.Remove(tmpPath))
	}
	return nil
}

// MemoryBackend keeps documents in memory. The zero value is ready to use.
type MemoryBackend struct {
	mu    sync.Mutex
	files map[string][]byte
}

// Load returns a copy of the last data saved under name.
func (m *MemoryBackend) Load(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// Save stores a copy of data under name.
func (m *MemoryBackend) Save(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = append([]byte(nil), data...)
	return nil
}
