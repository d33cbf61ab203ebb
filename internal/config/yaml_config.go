package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// PolicyConfig represents the structure of the optional policy.yaml file.
// Per-deployment policy that's easier to manage in YAML than env vars.
type PolicyConfig struct {
	ReservedSlugs []string      `yaml:"reserved_slugs"`
	Budgets       BudgetsConfig `yaml:"budgets"`
}

// BudgetsConfig overrides the rate-limit budgets. Zero values keep the
// environment defaults.
type BudgetsConfig struct {
	CreateSharesPerHour   int `yaml:"create_shares_per_hour"`
	GenerateUrnsPerHour   int `yaml:"generate_urns_per_hour"`
	RetrieveAttempts      int `yaml:"retrieve_attempts"`
	RetrieveWindowMinutes int `yaml:"retrieve_window_minutes"`
}

// defaultReservedSlugs are slugs that collide with routes or look official.
var defaultReservedSlugs = []string{
	"api", "s", "admin", "healthz", "readyz", "metrics", "static",
}

// LoadPolicyConfig loads the YAML policy file. Path is determined by the
// POLICY_FILE env var, defaulting to "policy.yaml". Returns nil without error
// if the file doesn't exist.
func LoadPolicyConfig() (*PolicyConfig, error) {
	path := getEnv("POLICY_FILE", "policy.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Policy file is optional
			return nil, nil
		}
		return nil, err
	}

	var policy PolicyConfig
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, err
	}

	return &policy, nil
}

// Apply overlays the policy onto the config. A nil policy applies only the
// built-in reserved slugs.
func (c *Config) Apply(policy *PolicyConfig) {
	c.ReservedSlugs = make(map[string]bool, len(defaultReservedSlugs))
	for _, slug := range defaultReservedSlugs {
		c.ReservedSlugs[slug] = true
	}

	if policy == nil {
		return
	}

	for _, slug := range policy.ReservedSlugs {
		c.ReservedSlugs[slug] = true
	}
	if policy.Budgets.CreateSharesPerHour > 0 {
		c.CreateSharesPerHour = policy.Budgets.CreateSharesPerHour
	}
	if policy.Budgets.GenerateUrnsPerHour > 0 {
		c.GenerateUrnsPerHour = policy.Budgets.GenerateUrnsPerHour
	}
	if policy.Budgets.RetrieveAttempts > 0 {
		c.RetrieveAttempts = policy.Budgets.RetrieveAttempts
	}
	if policy.Budgets.RetrieveWindowMinutes > 0 {
		c.RetrieveWindowMinutes = policy.Budgets.RetrieveWindowMinutes
	}
}

// IsReservedSlug reports whether a custom slug is blocked by policy.
func (c *Config) IsReservedSlug(slug string) bool {
	return c.ReservedSlugs[slug]
}
