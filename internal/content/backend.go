package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// StorageKey is the fixed key the content tree is persisted under.
const StorageKey = "lodge-content"

// ErrQuotaExceeded is returned by a backend that is out of space.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Backend is local key-value persistence for serialized trees.
type Backend interface {
	// Load returns the blob under key; ok is false when nothing is stored.
	Load(key string) (data []byte, ok bool, err error)
	// Save replaces the blob under key.
	Save(key string, data []byte) error
}

// MemoryBackend keeps blobs in memory. A positive Quota rejects writes
// larger than Quota bytes with ErrQuotaExceeded; FailWith fails every write.
type MemoryBackend struct {
	mu       sync.Mutex
	data     map[string][]byte
	writes   int
	Quota    int
	FailWith error
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

// Load returns a copy of the blob under key.
func (m *MemoryBackend) Load(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), d...), true, nil
}

// Save stores a copy of data under key.
func (m *MemoryBackend) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	if m.Quota > 0 && len(data) > m.Quota {
		return ErrQuotaExceeded
	}
	m.data[key] = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Writes returns the number of successful saves.
func (m *MemoryBackend) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var safeKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// FileBackend stores each key as a JSON file inside Dir.
type FileBackend struct {
	Dir string
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create content dir: %w", err)
	}
	return &FileBackend{Dir: dir}, nil
}

func (f *FileBackend) path(key string) (string, error) {
	if !safeKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.Dir, key+".json"), nil
}

// Load reads the file for key.
func (f *FileBackend) Load(key string) ([]byte, bool, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", p, err)
	}
	return data, true, nil
}

// Save writes data to a temp file and renames it over the previous blob, so
// a failed write never leaves a truncated file behind.
func (f *FileBackend) Save(key string, data []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace %s: %w", p, err)
	}
	return nil
}
