// Package store persists passage plans as JSON files, one per name.
// Only the inputs are saved; legs are rederivable and never written.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/passage-server/trajectory"
)

// Plan is the persisted unit: the waypoints and the ship they were
// planned for.
type Plan struct {
	Name      string                `json:"name"`
	Waypoints []trajectory.Waypoint `json:"waypoints"`
	Ship      trajectory.Ship       `json:"ship"`
}

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Store reads and writes plans under a directory.
type Store struct {
	dir  string
	lock sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(name string) (string, error) {
	if !nameRe.MatchString(name) {
		return "", fmt.Errorf("invalid plan name '%s'", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Save writes the plan under its name, replacing any previous version.
func (s *Store) Save(plan Plan) error {
	if len(plan.Waypoints) == 0 {
		return fmt.Errorf("plan '%s' has no waypoints", plan.Name)
	}
	if err := plan.Ship.Validate(); err != nil {
		return err
	}

	path, err := s.path(plan.Name)
	if err != nil {
		return err
	}

	content, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads the plan by name. os.IsNotExist on the returned error
// tells a missing plan apart from a broken one.
func (s *Store) Load(name string) (Plan, error) {
	var plan Plan

	path, err := s.path(name)
	if err != nil {
		return plan, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return plan, err
	}
	if err := json.Unmarshal(content, &plan); err != nil {
		return plan, err
	}
	plan.Name = name
	return plan, nil
}

// List returns the saved plan names, sorted.
func (s *Store) List() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.WithError(err).Error("Error listing plans")
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name()[:len(e.Name())-len(".json")])
	}
	sort.Strings(names)
	return names
}
