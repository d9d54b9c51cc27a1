package domain

// AutoFixConfig holds the tunables for one auto-fix run, loaded from
// .storyforge/config.yaml.
type AutoFixConfig struct {
	Enabled             bool                      `yaml:"enabled"`
	MaxAttempts         int                       `yaml:"max_attempts"`
	BackupRetentionDays int                       `yaml:"backup_retention_days"`
	Safety              SafetyConfig              `yaml:"safety"`
	Strategies          map[string]StrategyConfig `yaml:"strategies"`
}

// SafetyConfig gates destructive operations.
type SafetyConfig struct {
	RequireCleanTree bool `yaml:"require_clean_tree"`
	MaxFileSizeKB    int  `yaml:"max_file_size_kb"`
	TimeoutSeconds   int  `yaml:"timeout_seconds"`
}

// StrategyConfig enables or disables a single fix strategy.
type StrategyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultAutoFixConfig returns the configuration used when no config file
// exists.
func DefaultAutoFixConfig() AutoFixConfig {
	return AutoFixConfig{
		Enabled:             true,
		MaxAttempts:         3,
		BackupRetentionDays: 7,
		Safety: SafetyConfig{
			RequireCleanTree: true,
			MaxFileSizeKB:    500,
			TimeoutSeconds:   300,
		},
		Strategies: map[string]StrategyConfig{
			"formatting": {Enabled: true},
		},
	}
}

// StrategyEnabled reports whether a named strategy is enabled. Strategies
// absent from the config default to enabled.
func (c AutoFixConfig) StrategyEnabled(name string) bool {
	sc, ok := c.Strategies[name]
	if !ok {
		return true
	}
	return sc.Enabled
}
