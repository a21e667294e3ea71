package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	oerrors "github.com/weftci/weft/internal/errors"
)

// Environment variable prefix for weft configuration.
const envPrefix = "WEFT"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	// Set up environment variable bindings
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("release.branch", "WEFT_RELEASE_BRANCH")
	_ = v.BindEnv("release.index", "WEFT_RELEASE_INDEX")
	_ = v.BindEnv("release.username", "WEFT_RELEASE_USERNAME")

	return &Loader{v: v}
}

// Load loads configuration from the given file path.
// If configFile is empty, the default precedence applies.
// The explicitly bound WEFT_RELEASE_* variables override their file values;
// other fields come from the file alone.
func (l *Loader) Load(configFile string) (*Config, error) {
	configFile = ResolveConfigPath(configFile)

	if _, err := os.Stat(configFile); err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError(
				"configuration file not found",
				configFile,
				"Create a weft.yaml or point --config at one",
			)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	l.v.SetConfigFile(configFile)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		return nil, oerrors.NewConfigError(
			fmt.Sprintf("could not parse configuration: %v", err),
			configFile,
			"",
		)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, oerrors.NewConfigError(
			fmt.Sprintf("could not decode configuration: %v", err),
			configFile,
			"",
		)
	}

	return cfg.WithDefaults(), nil
}

// LoadAndValidate loads the config and runs semantic validation.
func LoadAndValidate(configFile string) (*Config, error) {
	cfg, err := NewLoader().Load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
