// ABOUTME: Persona profile loading for the assistant's voice and prompt
// ABOUTME: Loads TOML profiles with environment variable expansion

package persona

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Persona describes how the assistant presents itself. SystemPrompt is
// prepended to every model payload; Model and Voice, when set, override
// the configured defaults.
type Persona struct {
	Name         string `toml:"name"`
	SystemPrompt string `toml:"system_prompt"`
	Model        string `toml:"model"`
	Voice        string `toml:"voice"`
}

// Default returns the built-in persona used when no profile is configured.
func Default() *Persona {
	return &Persona{
		Name: "Assistant",
		SystemPrompt: "You are a helpful personal assistant. Answer concisely and " +
			"use the available commands when the user's request calls for one.",
	}
}

// Load reads a persona profile from the given path, expanding
// environment variables. An empty path returns the default persona.
func Load(path string) (*Persona, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona file: %w", err)
	}

	// Expand environment variables (${VAR} syntax)
	expanded := expandEnvVars(string(data))

	var p Persona
	if _, err := toml.Decode(expanded, &p); err != nil {
		return nil, fmt.Errorf("parsing persona: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating persona: %w", err)
	}

	return &p, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that required persona fields are present.
func (p *Persona) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.SystemPrompt == "" {
		return fmt.Errorf("system_prompt is required")
	}
	return nil
}
