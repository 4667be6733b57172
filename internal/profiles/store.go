// Package profiles persists named tone profiles in client-local storage.
//
// The whole list lives under a single key of an injected key-value Backend and
// is rewritten on every change.
package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/brand-voice/internal/types"
)

// StorageKey is the backend key holding the saved profile list
const StorageKey = "profiles"

var (
	// ErrNotFound is returned when an index or name matches no saved profile
	ErrNotFound = errors.New("profile not found")
	// ErrInvalidName is returned when a profile is saved without a name
	ErrInvalidName = errors.New("profile name is required")
)

// Backend is a minimal key-value capability.
// Get returns nil data and a nil error for a missing key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

// CorruptDataError represents a stored value that cannot be decoded
type CorruptDataError struct {
	Key   string
	Cause error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("stored value for %q is corrupt: %v", e.Key, e.Cause)
}

func (e *CorruptDataError) Unwrap() error {
	return e.Cause
}

// Store manages the saved profile list
type Store struct {
	backend Backend
	mu      sync.Mutex
}

// NewStore creates a Store over backend
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// List returns all saved profiles in insertion order
func (s *Store) List(ctx context.Context) ([]types.SavedProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save appends a named profile and returns its index.
// Blank names and invalid profiles are rejected without touching storage.
func (s *Store) Save(ctx context.Context, name string, profile types.ToneProfile) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrInvalidName
	}
	if err := profile.Validate(); err != nil {
		return 0, fmt.Errorf("invalid profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	saved = append(saved, types.SavedProfile{Name: name, Profile: profile})
	if err := s.store(ctx, saved); err != nil {
		return 0, err
	}
	return len(saved) - 1, nil
}

// Get returns the profile at index
func (s *Store) Get(ctx context.Context, index int) (*types.SavedProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(saved) {
		return nil, fmt.Errorf("index %d: %w", index, ErrNotFound)
	}
	return &saved[index], nil
}

// FindByName returns the first profile with the given name and its index
func (s *Store) FindByName(ctx context.Context, name string) (*types.SavedProfile, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load(ctx)
	if err != nil {
		return nil, -1, err
	}

	name = strings.TrimSpace(name)
	for i := range saved {
		if saved[i].Name == name {
			return &saved[i], i, nil
		}
	}
	return nil, -1, fmt.Errorf("name %q: %w", name, ErrNotFound)
}

// Delete removes the profile at index and returns it
func (s *Store) Delete(ctx context.Context, index int) (*types.SavedProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(saved) {
		return nil, fmt.Errorf("index %d: %w", index, ErrNotFound)
	}

	removed := saved[index]
	remaining := append(saved[:index:index], saved[index+1:]...)
	if err := s.store(ctx, remaining); err != nil {
		return nil, err
	}
	return &removed, nil
}

// load reads the list; an absent key is an empty list
func (s *Store) load(ctx context.Context) ([]types.SavedProfile, error) {
	data, err := s.backend.Get(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	if len(data) == 0 {
		return []types.SavedProfile{}, nil
	}

	var saved []types.SavedProfile
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, &CorruptDataError{Key: StorageKey, Cause: err}
	}
	if saved == nil {
		saved = []types.SavedProfile{}
	}
	return saved, nil
}

func (s *Store) store(ctx context.Context, saved []types.SavedProfile) error {
	data, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := s.backend.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}
