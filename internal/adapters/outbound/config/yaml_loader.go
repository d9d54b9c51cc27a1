package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/storyforge/storyforge/internal/domain"
)

const fileName = ".storyforge/config.yaml"

// configFile is the on-disk shape; the auto_fix section maps onto
// domain.AutoFixConfig.
type configFile struct {
	AutoFix *domain.AutoFixConfig `yaml:"auto_fix"`
}

// YAMLLoader reads project configuration from .storyforge/config.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the auto-fix configuration for projectPath. A missing file
// yields the defaults; a malformed file is an error rather than a silent
// fallback.
func (l *YAMLLoader) Load(projectPath string) (domain.AutoFixConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, filepath.FromSlash(fileName)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultAutoFixConfig(), nil
		}
		return domain.AutoFixConfig{}, err
	}

	// Start from defaults so omitted fields keep sane values.
	cfg := domain.DefaultAutoFixConfig()
	parsed := configFile{AutoFix: &cfg}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return domain.AutoFixConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Safety.MaxFileSizeKB <= 0 {
		cfg.Safety.MaxFileSizeKB = domain.DefaultAutoFixConfig().Safety.MaxFileSizeKB
	}
	if cfg.Safety.TimeoutSeconds <= 0 {
		cfg.Safety.TimeoutSeconds = domain.DefaultAutoFixConfig().Safety.TimeoutSeconds
	}
	return cfg, nil
}
