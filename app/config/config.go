// Package config loads the optional dashboard configuration file.
//
// The file is YAML and defines the dashboard title and the list of personas offered on the
// simulated SSO login page. Each persona maps an email to the mock SSO token exchanged with the
// backend. Without a file the built-in personas are used.
package config

import (
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// Config is the dashboard configuration
type Config struct {
	Title    string    `yaml:"title,omitempty" json:"title,omitempty" jsonschema:"description=dashboard title shown in the sidebar and page titles"`
	Personas []Persona `yaml:"personas" json:"personas" jsonschema:"required,minItems=1,description=identities offered on the login page"`
}

// Persona is a login choice for the simulated SSO flow
type Persona struct {
	Email       string `yaml:"email" json:"email" jsonschema:"required,format=email"`
	Label       string `yaml:"label,omitempty" json:"label,omitempty" jsonschema:"description=text shown in the selector (defaults to email)"`
	Token       string `yaml:"token" json:"token" jsonschema:"required,description=mock SSO token sent to the backend"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Name returns the persona label or email if label not set
func (p Persona) Name() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Email
}

// DefaultTitle is used if config doesn't define one
const DefaultTitle = "Job Management"

// Default returns built-in configuration matching the mock backend users
func Default() *Config {
	return &Config{
		Title: DefaultTitle,
		Personas: []Persona{
			{Email: "admin@company.com", Label: "Admin User", Token: "mock-sso-token-admin", Description: "full access"},
			{Email: "user@company.com", Label: "Regular User", Token: "mock-sso-token-user", Description: "full access"},
			{Email: "noaccess@company.com", Label: "No Access User", Token: "mock-sso-token-noaccess", Description: "no access"},
		},
	}
}

// Load reads config from path. Empty path returns Default.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from cli options
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	res := &Config{}
	if err := yaml.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if res.Title == "" {
		res.Title = DefaultTitle
	}
	if err := res.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return res, nil
}

// Validate checks required fields and duplicates
func (c *Config) Validate() error {
	if len(c.Personas) == 0 {
		return fmt.Errorf("at least one persona is required")
	}
	seen := map[string]bool{}
	for i, p := range c.Personas {
		if strings.TrimSpace(p.Email) == "" {
			return fmt.Errorf("persona %d: email is required", i+1)
		}
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return fmt.Errorf("persona %d: invalid email %q", i+1, p.Email)
		}
		if strings.TrimSpace(p.Token) == "" {
			return fmt.Errorf("persona %d: token is required", i+1)
		}
		key := strings.ToLower(p.Email)
		if seen[key] {
			return fmt.Errorf("persona %d: duplicate email %q", i+1, p.Email)
		}
		seen[key] = true
	}
	return nil
}

// TokenFor returns the mock SSO token for email, case-insensitive
func (c *Config) TokenFor(email string) (string, bool) {
	for _, p := range c.Personas {
		if strings.EqualFold(p.Email, email) {
			return p.Token, true
		}
	}
	return "", false
}

// GenerateSchema returns JSON schema of the config file
func GenerateSchema() *jsonschema.Schema {
	schema := jsonschema.Reflect(&Config{})
	schema.Title = "jobdash configuration schema"
	schema.Description = "Schema for jobdash YAML configuration file"
	return schema
}
