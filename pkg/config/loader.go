package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by the configuration.
const EnvPrefix = "BINSTRINGS"

// NoConfigEnv disables the search for a config file in the standard locations when set.
const NoConfigEnv = EnvPrefix + "_NO_CONFIG"

// Config represents the complete configuration structure for binstrings.
type Config struct {
	Scan ScanConfig `mapstructure:"scan"`
}

// ScanConfig contains settings of the scan command
type ScanConfig struct {
	MinLength       uint64 `mapstructure:"min_length"`
	Format          string `mapstructure:"format"`
	Output          string `mapstructure:"output"`
	MaxSize         string `mapstructure:"max_size"`
	ExtractArchives bool   `mapstructure:"extract_archives"`
}

var globalViper *viper.Viper

// InitializeViper initializes the global Viper instance with config file and defaults.
// This should be called once during application initialization.
func InitializeViper(configFile string) error {
	v := viper.New()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		log.Debug().Str("path", configFile).Msg("Using specified config file")
	} else if noConfigRequested() {
		log.Debug().Msg("Config file search disabled via " + NoConfigEnv)
	} else {
		v.SetConfigName("binstrings")
		v.SetConfigType("yaml")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "binstrings"))
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")

		log.Debug().Msg("Searching for config file in standard locations")
	}

	if configFile != "" || !noConfigRequested() {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Debug().Msg("No config file found, using defaults and command-line flags")
			} else {
				return fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded config file")
		}
	}

	// BINSTRINGS_SCAN_MIN_LENGTH maps onto scan.min_length
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	globalViper = v
	return nil
}

func noConfigRequested() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(NoConfigEnv))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// LoadConfig initializes Viper and unmarshals the result.
func LoadConfig(configFile string) (*Config, error) {
	if err := InitializeViper(configFile); err != nil {
		return nil, err
	}
	return UnmarshalConfig()
}

// ResetViper drops the global configuration state.
func ResetViper() {
	globalViper = nil
}

// GetViper returns the global Viper instance
func GetViper() *viper.Viper {
	if globalViper == nil {
		if err := InitializeViper(""); err != nil {
			log.Fatal().Err(err).Msg("Failed to auto-initialize Viper configuration")
		}
	}
	return globalViper
}

// BindCommandFlags binds every local and inherited flag of cmd to a Viper key.
// A flag named "min-length" is bound to "<prefix>.min_length" unless overrides
// maps the flag name to a different key.
// This enables automatic priority handling: CLI flags > env > config file > defaults.
func BindCommandFlags(cmd *cobra.Command, prefix string, overrides map[string]string) error {
	v := GetViper()

	var bindErr error
	bind := func(flag *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key, ok := overrides[flag.Name]
		if !ok {
			if prefix == "" {
				return
			}
			key = prefix + "." + strings.ReplaceAll(flag.Name, "-", "_")
		}
		if err := v.BindPFlag(key, flag); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %s to key %s: %w", flag.Name, key, err)
		}
	}

	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return bindErr
}

// AutoBindFlags binds the flags of cmd below a prefix derived from its command path,
// "binstrings scan" becomes "scan".
func AutoBindFlags(cmd *cobra.Command, overrides map[string]string) error {
	return BindCommandFlags(cmd, commandKey(cmd), overrides)
}

func commandKey(cmd *cobra.Command) string {
	var parts []string
	for c := cmd; c != nil && c.HasParent(); c = c.Parent() {
		parts = append([]string{c.Name()}, parts...)
	}
	return strings.Join(parts, ".")
}

// GetString retrieves a string value using Viper's native priority handling
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetBool retrieves a bool value using Viper's native priority handling
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}

// GetUint64 retrieves an unsigned value using Viper's native priority handling
func GetUint64(key string) uint64 {
	return GetViper().GetUint64(key)
}

// UnmarshalConfig unmarshals the configuration into a Config struct
func UnmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := GetViper().Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return config, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.min_length", 3)
	v.SetDefault("scan.format", "text")
	v.SetDefault("scan.output", "")
	v.SetDefault("scan.max_size", "0")
	v.SetDefault("scan.extract_archives", false)
}
