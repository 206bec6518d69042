// Package templates provides issue templates for create.
// A template supplies a default priority, a label and a description skeleton.
package templates

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chainlink-tracker/chainlink/internal/types"
)

// Template is a named set of defaults applied to a new issue.
type Template struct {
	Name              string         `toml:"name"`
	Priority          types.Priority `toml:"priority"`
	Label             string         `toml:"label"`
	DescriptionPrefix string         `toml:"description_prefix"`
}

// Builtin contains the templates compiled into the binary.
var Builtin = map[string]Template{
	"bug": {
		Name:              "bug",
		Priority:          types.PriorityHigh,
		Label:             "bug",
		DescriptionPrefix: "Steps to reproduce:\n1. \n\nExpected: \nActual: ",
	},
	"feature": {
		Name:              "feature",
		Priority:          types.PriorityMedium,
		Label:             "feature",
		DescriptionPrefix: "Goal: \n\nAcceptance criteria:\n- ",
	},
	"refactor": {
		Name:              "refactor",
		Priority:          types.PriorityLow,
		Label:             "refactor",
		DescriptionPrefix: "Current state: \n\nDesired state: \n\nReason: ",
	},
	"research": {
		Name:              "research",
		Priority:          types.PriorityLow,
		Label:             "research",
		DescriptionPrefix: "Question: \n\nContext: \n\nFindings: ",
	},
}

// userFile is the layout of a templates TOML file:
//
//	[templates.chore]
//	priority = "low"
//	label = "chore"
type userFile struct {
	Templates map[string]Template `toml:"templates"`
}

// LoadUser reads user templates from path. A missing file yields no templates.
func LoadUser(path string) (map[string]Template, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user config
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read templates file: %w", err)
	}

	var f userFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse templates file %s: %w", path, err)
	}

	for name, t := range f.Templates {
		if t.Name == "" {
			t.Name = name
		}
		if t.Priority == "" {
			t.Priority = types.DefaultPriority
		}
		if !t.Priority.IsValid() {
			return nil, fmt.Errorf("template %q: invalid priority %q", name, t.Priority)
		}
		f.Templates[name] = t
	}
	return f.Templates, nil
}

// All returns built-in templates merged with those in path.
// User templates override built-ins with the same name.
func All(path string) (map[string]Template, error) {
	result := make(map[string]Template, len(Builtin))
	for name, t := range Builtin {
		result[name] = t
	}

	user, err := LoadUser(path)
	if err != nil {
		return nil, err
	}
	for name, t := range user {
		result[name] = t
	}
	return result, nil
}

// Get looks up a template by name.
func Get(name, path string) (*Template, error) {
	all, err := All(path)
	if err != nil {
		return nil, err
	}
	t, ok := all[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(names(all), ", "))
	}
	return &t, nil
}

// Names returns the sorted template names available with path.
func Names(path string) ([]string, error) {
	all, err := All(path)
	if err != nil {
		return nil, err
	}
	return names(all), nil
}

func names(all map[string]Template) []string {
	out := make([]string, 0, len(all))
	for name := range all {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Apply merges t into the caller's create arguments. The template priority
// wins only when the caller left the default; the description skeleton is
// prepended to any description the caller gave.
func Apply(t *Template, description *string, priority types.Priority) (*string, types.Priority) {
	if t == nil {
		return description, priority
	}

	if priority == types.DefaultPriority && t.Priority != "" {
		priority = t.Priority
	}

	switch {
	case t.DescriptionPrefix != "" && description != nil:
		merged := t.DescriptionPrefix + "\n\n" + *description
		description = &merged
	case t.DescriptionPrefix != "":
		prefix := t.DescriptionPrefix
		description = &prefix
	}
	return description, priority
}
