package store

import (
	"sync"

	"github.com/rkahn/rundash/internal/models"
)

// SettingsStore persists user preferences as a JSON file.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore creates a store backed by path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Load returns the saved settings, or defaults when none exist yet.
func (s *SettingsStore) Load() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var settings models.Settings
	if err := readJSON(s.path, &settings); err != nil {
		if IsNotExist(err) {
			return models.DefaultSettings(), nil
		}
		return models.Settings{}, err
	}
	if settings.GoalMi <= 0 {
		settings.GoalMi = models.DefaultWeeklyGoalMi
	}
	return settings, nil
}

// Save replaces the settings file.
func (s *SettingsStore) Save(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.path, settings)
}
