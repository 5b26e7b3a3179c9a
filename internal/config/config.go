// Package config loads shelf settings from config.yaml with Viper and writes
// the default file on first run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. SHELF_TABLE_FILE.
	EnvPrefix = "SHELF"
)

// Config keys.
const (
	KeyTableFile   = "table_file"
	KeyFields      = "fields"
	KeyFilters     = "filters"
	KeyStatuses    = "statuses"
	KeyIDField     = "id_field"
	KeyStatusField = "status_field"
	KeyIDStrategy  = "id_strategy"
	KeyLogLevel    = "log_level"
)

// DefaultLogLevel is used when log_level is not set.
const DefaultLogLevel = "info"

// header is written above the generated settings.
const header = `# shelf configuration
#
# table_file: path of the books table (comma-separated, header row first).
# fields: table columns in on-disk order. Filters must start with different
#   letters because each one becomes a short flag of "shelf find".
# filters: columns users may search by.
# statuses: accepted book statuses, lower case. The first is the default.
# id_strategy: lines, sequence, or uuid.
# log_level: debug, info, warn, or error.

`

// Settings is the content of config.yaml.
type Settings struct {
	TableFile   string   `yaml:"table_file" mapstructure:"table_file"`
	Fields      []string `yaml:"fields" mapstructure:"fields"`
	Filters     []string `yaml:"filters" mapstructure:"filters"`
	Statuses    []string `yaml:"statuses" mapstructure:"statuses"`
	IDField     string   `yaml:"id_field" mapstructure:"id_field"`
	StatusField string   `yaml:"status_field" mapstructure:"status_field"`
	IDStrategy  string   `yaml:"id_strategy" mapstructure:"id_strategy"`
	LogLevel    string   `yaml:"log_level" mapstructure:"log_level"`
}

// Default returns the settings of a freshly generated config.yaml.
func Default() Settings {
	s := types.DefaultSchema()
	return Settings{
		TableFile:   "books_data.csv",
		Fields:      s.Fields,
		Filters:     s.Filters,
		Statuses:    s.Statuses,
		IDField:     s.IDField,
		StatusField: s.StatusField,
		IDStrategy:  types.IDLines,
		LogLevel:    DefaultLogLevel,
	}
}

// Schema returns the table schema described by the settings.
func (s Settings) Schema() types.Schema {
	return types.Schema{
		Fields:      s.Fields,
		Filters:     s.Filters,
		Statuses:    s.Statuses,
		IDField:     s.IDField,
		StatusField: s.StatusField,
	}
}

// StoreConfig returns the store configuration for the resolved table path.
func (s Settings) StoreConfig(tableFile string) types.Config {
	return types.Config{
		TableFile:  tableFile,
		Schema:     s.Schema(),
		IDStrategy: s.IDStrategy,
	}
}

// Path returns the config.yaml location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, configFileExt)
}

// Load reads config.yaml from configDir using Viper. It creates the directory
// and a default config.yaml on first run. Environment variables prefixed with
// SHELF_ override file values.
func Load(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if _, err := WriteDefault(Path(configDir)); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	d := Default()
	v.SetDefault(KeyTableFile, d.TableFile)
	v.SetDefault(KeyFields, d.Fields)
	v.SetDefault(KeyFilters, d.Filters)
	v.SetDefault(KeyStatuses, d.Statuses)
	v.SetDefault(KeyIDField, d.IDField)
	v.SetDefault(KeyStatusField, d.StatusField)
	v.SetDefault(KeyIDStrategy, d.IDStrategy)
	v.SetDefault(KeyLogLevel, d.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// A config.yaml removed after WriteDefault is not an error.
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// FromViper extracts Settings from a loaded Viper instance.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		TableFile:   v.GetString(KeyTableFile),
		Fields:      v.GetStringSlice(KeyFields),
		Filters:     v.GetStringSlice(KeyFilters),
		Statuses:    v.GetStringSlice(KeyStatuses),
		IDField:     v.GetString(KeyIDField),
		StatusField: v.GetString(KeyStatusField),
		IDStrategy:  v.GetString(KeyIDStrategy),
		LogLevel:    v.GetString(KeyLogLevel),
	}
}

// WriteDefault creates config.yaml with default settings if the file does not
// exist. It reports whether a file was written.
func WriteDefault(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	d := Default()
	data, err := yaml.Marshal(&d)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
