package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// templatesFile is the file name used for persistence inside the
// manager's storage directory.
const templatesFile = "templates.json"

// Manager holds a set of named templates and optionally persists them
// to disk as JSON.
//
// A Manager is safe for concurrent use.
//
// Example:
//
//	manager, _ := prompt.NewManager("./prompts")
//	manager.AddTemplate("research", "Research ${topic} and summarize.", "",
//	    []string{"topic"})
//
//	tmpl, _ := manager.GetTemplate("research")
//	text, _ := tmpl.Format(map[string]string{"topic": "vector databases"})
type Manager struct {
	mu          sync.RWMutex
	templates   map[string]*Template
	storagePath string
}

// NewManager creates a manager.
//
// When storagePath is non-empty the directory is created if needed and
// any previously saved templates are loaded from it. An empty
// storagePath yields a purely in-memory manager.
func NewManager(storagePath string) (*Manager, error) {
	m := &Manager{
		templates:   make(map[string]*Template),
		storagePath: storagePath,
	}

	if storagePath != "" {
		if err := os.MkdirAll(storagePath, 0o755); err != nil {
			return nil, fmt.Errorf("prompt: create storage dir: %w", err)
		}
		if err := m.load(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// AddTemplate creates a new template, overwriting any existing template
// with the same name, and persists the change.
func (m *Manager) AddTemplate(name, content, description string, variables []string) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	template := NewTemplate(name, content, description, variables)
	m.templates[name] = template

	if err := m.save(); err != nil {
		return nil, err
	}
	return template.clone(), nil
}

// GetTemplate retrieves a template by name.
//
// The returned template is a copy; revising it directly does not affect
// the manager's stored state. Use UpdateTemplate for that. Returns
// ErrTemplateNotFound if no such template exists.
func (m *Manager) GetTemplate(name string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	template, ok := m.templates[name]
	if !ok {
		return nil, fmt.Errorf("prompt: %q: %w", name, ErrTemplateNotFound)
	}
	return template.clone(), nil
}

// UpdateTemplate records a new revision of an existing template.
//
// Description and variables are replaced only when non-empty. Returns
// ErrTemplateNotFound if no such template exists.
func (m *Manager) UpdateTemplate(name, content, description string, variables []string) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	template, ok := m.templates[name]
	if !ok {
		return nil, fmt.Errorf("prompt: %q: %w", name, ErrTemplateNotFound)
	}

	template.AddVersion(content)
	if description != "" {
		template.Description = description
	}
	if len(variables) > 0 {
		template.Variables = variables
	}

	if err := m.save(); err != nil {
		return nil, err
	}
	return template.clone(), nil
}

// Names returns the names of all templates in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// load reads templates from the storage directory. A missing file is
// not an error; the manager simply starts empty.
func (m *Manager) load() error {
	path := filepath.Join(m.storagePath, templatesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("prompt: load templates: %w", err)
	}

	var templates []*Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return fmt.Errorf("prompt: parse templates: %w", err)
	}

	for _, template := range templates {
		m.templates[template.Name] = template
	}
	return nil
}

// save writes all templates to the storage directory. A manager without
// a storage path keeps everything in memory.
func (m *Manager) save() error {
	if m.storagePath == "" {
		return nil
	}

	templates := make([]*Template, 0, len(m.templates))
	for _, name := range m.sortedNamesLocked() {
		templates = append(templates, m.templates[name])
	}

	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return fmt.Errorf("prompt: encode templates: %w", err)
	}

	path := filepath.Join(m.storagePath, templatesFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("prompt: save templates: %w", err)
	}
	return nil
}

// sortedNamesLocked returns template names in sorted order. The caller
// must hold the lock.
func (m *Manager) sortedNamesLocked() []string {
	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
