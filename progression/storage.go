// progression/storage.go
package progression

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StorageKey is the namespaced blob key holding the serialized state.
// Multi-user callers suffix it with the user id.
const StorageKey = "progression-storage"

// LocalStorage is the durable local store for the serialized state blob.
// Load returns (nil, nil) when no blob exists yet.
type LocalStorage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FileStorage keeps one file per key under a directory. Saves are atomic:
// a temp file is written and renamed over the target, so a reload never
// observes a partial write.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	// Keys contain ':' separators; keep filenames portable.
	name := strings.ReplaceAll(key, ":", "_") + ".json"
	return filepath.Join(f.dir, name)
}

func (f *FileStorage) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FileStorage) Save(key string, data []byte) error {
	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// MemoryStorage is an in-process LocalStorage, used in tests.
type MemoryStorage struct {
	blobs map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	return m.blobs[key], nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.blobs[key] = buf
	return nil
}
