// Package storage persists the in-progress form session on the client.
// A KV holds string values under string keys; SessionStore layers the
// session id and step pointer on top of it.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/renameio/v2"
)

// ErrKeyNotFound is returned by KV.Get for an absent key.
var ErrKeyNotFound = errors.New("key not found")

// KV is a synchronous string key-value store.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// FileKV is a KV persisted as a JSON object in a single file. Every write
// replaces the file atomically.
type FileKV struct {
	path   string
	mu     sync.Mutex
	values map[string]string
}

// OpenFileKV loads path, treating a missing file as empty.
func OpenFileKV(path string) (*FileKV, error) {
	kv := &FileKV{path: path}
	if err := kv.load(); err != nil {
		return nil, err
	}
	return kv, nil
}

func (kv *FileKV) load() error {
	f, err := os.Open(kv.path)
	if err != nil {
		if os.IsNotExist(err) {
			kv.values = make(map[string]string)
			return nil
		}
		return err
	}
	defer f.Close()

	values := make(map[string]string)
	if err := json.NewDecoder(f).Decode(&values); err != nil {
		return fmt.Errorf("decode %s: %w", kv.path, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	kv.values = values
	return nil
}

func (kv *FileKV) save() error {
	data, err := json.Marshal(kv.values)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(kv.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", kv.path, err)
	}
	return nil
}

// Get returns the value stored at key.
func (kv *FileKV) Get(key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores value at key and persists the file. The in-memory value is
// rolled back when the write fails.
func (kv *FileKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	prev, had := kv.values[key]
	kv.values[key] = value
	if err := kv.save(); err != nil {
		if had {
			kv.values[key] = prev
		} else {
			delete(kv.values, key)
		}
		return err
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (kv *FileKV) Remove(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if _, ok := kv.values[key]; !ok {
		return nil
	}
	delete(kv.values, key)
	return kv.save()
}

// MemoryKV is a KV that lives for the process only.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get returns the value stored at key.
func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set stores value at key.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Remove deletes key.
func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
