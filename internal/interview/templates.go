package interview

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRole is used when an interview is started with an unrecognized role.
const DefaultRole = "software_engineer"

// Templates maps role names to their ordered question lists. Immutable after
// construction.
type Templates struct {
	roles map[string][]string
}

// DefaultTemplates returns the built-in question sets.
func DefaultTemplates() *Templates {
	return &Templates{roles: map[string][]string{
		"software_engineer": {
			"Explain the difference between a process and a thread.",
			"What is a race condition?",
			"How does a hash map work internally?",
			"Explain time complexity of merge sort.",
		},
		"data_analyst": {
			"What is the difference between variance and standard deviation?",
			"Explain correlation vs causation.",
			"How would you clean a dataset with missing values?",
		},
		"hr_behavioral": {
			"Tell me about a time you handled conflict.",
			"Describe a situation where you led a team.",
			"What motivates you at work?",
		},
	}}
}

type templatesFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadTemplates reads role question sets from a YAML file.
func LoadTemplates(filename string) (*Templates, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading templates file %s: %w", filename, err)
	}

	var parsed templatesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing templates file %s: %w", filename, err)
	}

	templates := &Templates{roles: parsed.Roles}
	if err := templates.validate(); err != nil {
		return nil, fmt.Errorf("validating templates file %s: %w", filename, err)
	}

	return templates, nil
}

func (t *Templates) validate() error {
	if len(t.roles) == 0 {
		return fmt.Errorf("at least one role is required")
	}

	if _, ok := t.roles[DefaultRole]; !ok {
		return fmt.Errorf("role %q is required as the fallback for unknown roles", DefaultRole)
	}

	for role, questions := range t.roles {
		if len(questions) == 0 {
			return fmt.Errorf("role %q has no questions", role)
		}
		for i, q := range questions {
			if strings.TrimSpace(q) == "" {
				return fmt.Errorf("role %q question %d is empty", role, i+1)
			}
		}
	}

	return nil
}

// Questions returns the ordered question list for the role, falling back to
// DefaultRole when the role is unknown.
func (t *Templates) Questions(role string) []string {
	if questions, ok := t.roles[role]; ok {
		return questions
	}
	return t.roles[DefaultRole]
}

// Has reports whether the role has its own question set.
func (t *Templates) Has(role string) bool {
	_, ok := t.roles[role]
	return ok
}

// Roles lists the configured role names in stable order.
func (t *Templates) Roles() []string {
	roles := make([]string, 0, len(t.roles))
	for role := range t.roles {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
