// Package project persists part lists, settings, and nesting reports as JSON
// under the application data directory.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/piwi3910/BarNest/internal/model"
)

// Project bundles a named part list with its settings and the most recent
// nesting report, if any.
type Project struct {
	Name      string               `json:"name"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Parts     []model.Part         `json:"parts"`
	Settings  model.NestSettings   `json:"settings"`
	Report    *model.NestingReport `json:"report,omitempty"`
}

// Store reads and writes projects under a base directory, one JSON file per
// project.
type Store struct {
	dir string
}

// DefaultDataDir returns the default directory for application data.
// On all platforms this is ~/.barnest/
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".barnest")
}

// NewStore creates a Store rooted at dir. The directory is created on first
// save, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

var safeNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// safeName maps a project name onto a filesystem-safe file stem.
func safeName(name string) string {
	cleaned := safeNameRe.ReplaceAllString(strings.TrimSpace(name), "_")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		cleaned = "project"
	}
	return cleaned
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, "projects", safeName(name)+".json")
}

// Save writes the project to disk, stamping UpdatedAt (and CreatedAt when
// unset). Missing parent directories are created automatically.
func (s *Store) Save(p *Project) error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	path := s.path(p.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads the named project. Returns os.ErrNotExist (wrapped) when no such
// project has been saved.
func (s *Store) Load(name string) (*Project, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %q: %w", name, os.ErrNotExist)
		}
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode project %q: %w", name, err)
	}
	if p.Parts == nil {
		p.Parts = []model.Part{}
	}
	return &p, nil
}

// List returns the names of all saved projects, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, "projects"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named project. Deleting a project that does not exist is
// not an error.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete project %q: %w", name, err)
	}
	return nil
}
