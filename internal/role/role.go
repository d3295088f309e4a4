// Package role handles loading and formatting built-in review role definitions.
package role

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Role selects the review perspective for an invocation.
type Role string

const (
	RoleArchitecture   Role = "architecture"
	RoleImplementation Role = "implementation"
	RoleAPI            Role = "api"
	RoleData           Role = "data"

	// RoleHolistic is the full-document pass-2 perspective. It is not part of
	// the selectable per-section role set.
	RoleHolistic Role = "holistic"
)

// Valid reports whether r is a selectable per-section review role.
func (r Role) Valid() bool {
	switch r {
	case RoleArchitecture, RoleImplementation, RoleAPI, RoleData:
		return true
	}
	return false
}

// Definition is a loaded role: the reviewer persona, its focus areas, and the
// prompt template sent ahead of the content under review.
type Definition struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Focus       []string `yaml:"focus"`
	Template    string   `yaml:"template"`
}

// Load reads a built-in role definition by name.
func Load(r Role) (*Definition, error) {
	data, err := builtinFS.ReadFile("builtin/" + string(r) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("role.Load: unknown role %q: %w", r, err)
	}
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("role.Load: parse %q: %w", r, err)
	}
	return &d, nil
}

// List returns the names of all available built-in roles, the holistic
// perspective included.
func List() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if n := e.Name(); strings.HasSuffix(n, ".yaml") {
			names = append(names, strings.TrimSuffix(n, ".yaml"))
		}
	}
	return names, nil
}
