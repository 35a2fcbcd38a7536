package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// JSONStore persists one collection as a JSON array file. Reads and writes
// are guarded by an RWMutex; writes go to a temp file followed by an atomic
// rename so a crash mid-write never truncates the collection.
type JSONStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewJSONStore creates the store for <dataDir>/<collection>.json, creating
// the data directory and seeding the file with an empty collection if absent.
func NewJSONStore(dataDir, collection string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	s := &JSONStore{
		filePath: filepath.Join(dataDir, collection+".json"),
	}

	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		if err := os.WriteFile(s.filePath, []byte("[]"), 0644); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Load reads the collection file into data.
func (s *JSONStore) Load(data interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// Seed file was removed out-of-band; treat as empty.
			return nil
		}
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(data)
}

// Save writes the collection file.
func (s *JSONStore) Save(data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tempFile := s.filePath + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, s.filePath)
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.filePath
}

// Exists checks if the collection file exists.
func (s *JSONStore) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.filePath)
	return err == nil
}
