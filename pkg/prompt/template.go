// Package prompt provides versioned prompt templates with variable
// interpolation and optional JSON persistence.
package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Predefined errors for common failure scenarios.
var (
	// ErrTemplateNotFound indicates that a requested template does not exist.
	ErrTemplateNotFound = errors.New("prompt template not found")

	// ErrMissingVariables indicates that Format was called without all
	// variables the template declares as required.
	ErrMissingVariables = errors.New("missing required template variables")
)

// variablePattern matches ${name} placeholders in template content.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Version is a single immutable revision of a template.
type Version struct {
	// Content is the template text of this revision.
	Content string `json:"content"`

	// Number is the 1-based revision number.
	Number int `json:"version"`

	// CreatedAt is when this revision was created.
	CreatedAt time.Time `json:"created_at"`

	// Comment optionally describes why the revision was made.
	Comment string `json:"comment,omitempty"`
}

// String returns a short human-readable description of the version.
func (v Version) String() string {
	return fmt.Sprintf("Version %d (%s)", v.Number, v.CreatedAt.Format(time.RFC3339))
}

// Template is a named prompt with a revision history.
//
// Placeholders use ${name} syntax. Variables listed in Variables are
// required at format time; placeholders for unknown variables are left
// untouched so partial formatting is safe.
type Template struct {
	// Name uniquely identifies the template within a manager.
	Name string `json:"name"`

	// Content is the current template text.
	Content string `json:"content"`

	// Description optionally explains what the template is for.
	Description string `json:"description,omitempty"`

	// Variables lists the placeholder names that must be provided
	// when formatting.
	Variables []string `json:"variables"`

	// Versions is the full revision history, oldest first. The last
	// entry always matches Content.
	Versions []Version `json:"versions"`
}

// NewTemplate creates a template and records the content as version 1.
func NewTemplate(name, content, description string, variables []string) *Template {
	t := &Template{
		Name:        name,
		Content:     content,
		Description: description,
		Variables:   variables,
	}
	t.AddVersion(content)
	return t
}

// AddVersion records a new revision and makes it the current content.
func (t *Template) AddVersion(content string) Version {
	version := Version{
		Content:   content,
		Number:    len(t.Versions) + 1,
		CreatedAt: time.Now().UTC(),
	}
	t.Versions = append(t.Versions, version)
	t.Content = content
	return version
}

// clone returns an independent copy of the template.
func (t *Template) clone() *Template {
	cp := *t
	cp.Variables = append([]string(nil), t.Variables...)
	cp.Versions = append([]Version(nil), t.Versions...)
	return &cp
}

// GetVersion returns the revision with the given 1-based number.
//
// The second return value reports whether the revision exists.
func (t *Template) GetVersion(number int) (Version, bool) {
	if number < 1 || number > len(t.Versions) {
		return Version{}, false
	}
	return t.Versions[number-1], true
}

// Format substitutes ${name} placeholders with the provided variables.
//
// Every variable the template declares must be present; otherwise the
// call fails with ErrMissingVariables. Placeholders for variables that
// are not provided and not required are left as-is.
func (t *Template) Format(variables map[string]string) (string, error) {
	var missing []string
	for _, name := range t.Variables {
		if _, ok := variables[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %v", ErrMissingVariables, missing)
	}

	result := variablePattern.ReplaceAllStringFunc(t.Content, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if value, ok := variables[name]; ok {
			return value
		}
		return match
	})
	return result, nil
}

// ValidateVariables reports whether every required variable is present.
func (t *Template) ValidateVariables(variables map[string]string) bool {
	for _, name := range t.Variables {
		if _, ok := variables[name]; !ok {
			return false
		}
	}
	return true
}
