package reminder

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable thresholds of the trigger engine and the
// presentation settings of the message generator. Zero values are
// replaced by defaults in applyDefaults.
type Config struct {
	// CooldownHours blocks a new reminder while the previous one is younger (default 24).
	CooldownHours int `yaml:"cooldown_hours"`

	// GentleAfterDays is the stall age that earns a gentle reminder (default 3).
	GentleAfterDays int `yaml:"gentle_after_days"`

	// UrgentAfterDays is the stall age that escalates to urgent (default 7).
	UrgentAfterDays int `yaml:"urgent_after_days"`

	// LowCompletionRate and LowCompletionAfterDays escalate to urgent when the
	// completion rate is still below the rate after that many days (default 50, 10).
	LowCompletionRate      int `yaml:"low_completion_rate"`
	LowCompletionAfterDays int `yaml:"low_completion_after_days"`

	// CriticalAfterDays is the project age that escalates to critical (default 14).
	CriticalAfterDays int `yaml:"critical_after_days"`

	// Phase1GraceDays escalates to critical while required Phase-1 items are
	// still outstanding after this many days (default 7).
	Phase1GraceDays int `yaml:"phase1_grace_days"`

	// SubjectBudget caps the subject line in runes (default 60).
	SubjectBudget int `yaml:"subject_budget"`

	// MaxListedItems caps how many outstanding items a message names (default 5).
	MaxListedItems int `yaml:"max_listed_items"`

	// Tone selects greeting and sign-off wording: friendly or formal (default friendly).
	Tone string `yaml:"tone"`

	// AgencyName signs the message.
	AgencyName string `yaml:"agency_name"`

	// PortalURL is where clients upload content; omitted from the call to action when empty.
	PortalURL string `yaml:"portal_url"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.CooldownHours == 0 {
		c.CooldownHours = 24
	}
	if c.GentleAfterDays == 0 {
		c.GentleAfterDays = 3
	}
	if c.UrgentAfterDays == 0 {
		c.UrgentAfterDays = 7
	}
	if c.LowCompletionRate == 0 {
		c.LowCompletionRate = 50
	}
	if c.LowCompletionAfterDays == 0 {
		c.LowCompletionAfterDays = 10
	}
	if c.CriticalAfterDays == 0 {
		c.CriticalAfterDays = 14
	}
	if c.Phase1GraceDays == 0 {
		c.Phase1GraceDays = 7
	}
	if c.SubjectBudget == 0 {
		c.SubjectBudget = 60
	}
	if c.MaxListedItems == 0 {
		c.MaxListedItems = 5
	}
	if c.Tone == "" {
		c.Tone = ToneFriendly
	}
	if c.AgencyName == "" {
		c.AgencyName = "Your project team"
	}
}

// Tones supported by the message generator.
const (
	ToneFriendly = "friendly"
	ToneFormal   = "formal"
)

// Cooldown returns the cooldown window.
func (c Config) Cooldown() time.Duration { return time.Duration(c.CooldownHours) * time.Hour }

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// LoadConfig reads a YAML reminder configuration and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading reminder config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing reminder config: %w", err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c Config) check() error {
	if c.CooldownHours < 0 || c.GentleAfterDays < 0 || c.UrgentAfterDays < 0 ||
		c.CriticalAfterDays < 0 || c.Phase1GraceDays < 0 || c.LowCompletionAfterDays < 0 {
		return fmt.Errorf("reminder thresholds must not be negative")
	}
	if c.LowCompletionRate < 0 || c.LowCompletionRate > 100 {
		return fmt.Errorf("low_completion_rate must be between 0 and 100, got %d", c.LowCompletionRate)
	}
	switch c.Tone {
	case "", ToneFriendly, ToneFormal:
	default:
		return fmt.Errorf("tone must be friendly or formal, got %q", c.Tone)
	}
	return nil
}
