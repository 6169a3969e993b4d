package store

import (
	"strconv"
	"sync"
)

// RunTypeStore persists user-assigned run-type labels per activity,
// keyed by activity ID. Labels are overlaid onto fetched activities
// before mode detection and context assembly.
type RunTypeStore struct {
	mu   sync.Mutex
	path string
}

// NewRunTypeStore creates a store backed by path.
func NewRunTypeStore(path string) *RunTypeStore {
	return &RunTypeStore{path: path}
}

// Load returns the activityID → run-type mapping; empty when no file
// exists yet.
func (s *RunTypeStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Set saves a run-type label for one activity.
func (s *RunTypeStore) Set(activityID int64, runType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	types, err := s.loadLocked()
	if err != nil {
		return err
	}
	types[strconv.FormatInt(activityID, 10)] = runType
	return writeJSON(s.path, types)
}

func (s *RunTypeStore) loadLocked() (map[string]string, error) {
	types := make(map[string]string)
	if err := readJSON(s.path, &types); err != nil && !IsNotExist(err) {
		return nil, err
	}
	return types, nil
}
