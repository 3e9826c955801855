package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Medium is the persistence port: one named entry holding the serialized
// record collection.
type Medium interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// FileMedium stores the collection in a single JSON file. Writes go
// through a temp file and rename so a crash mid-write never corrupts the
// previous snapshot.
type FileMedium struct {
	path string
}

func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: path}
}

func (m *FileMedium) Read() ([]byte, error) {
	return os.ReadFile(m.path)
}

func (m *FileMedium) Write(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replacing data file: %w", err)
	}
	return nil
}

// MemoryMedium keeps the entry in memory, for tests.
type MemoryMedium struct {
	Data []byte
	Err  error // returned from Read when set
}

func (m *MemoryMedium) Read() ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Data, nil
}

func (m *MemoryMedium) Write(data []byte) error {
	m.Data = append([]byte(nil), data...)
	return nil
}
