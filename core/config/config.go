package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"record-collection/core/database"
	"record-collection/core/logger"
	"record-collection/core/server"
	"record-collection/core/storage"
	"record-collection/core/transport"
	"record-collection/feature/records"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the optional configuration file looked up next to the .env file,
// without extension (config.yaml, config.json, config.toml).
const FileName = "config"

// Config holds all configuration for the application, one section per concern.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Collection holds the record schema and ordering of the hosted collection.
	Collection records.Config `mapstructure:"collection"`
	// Transport selects and configures how the collection fetches and saves.
	Transport transport.Config `mapstructure:"transport"`
}

// LoadConfig loads configuration from, lowest precedence first, struct tag
// defaults, an optional config file in path, a .env file in path and the
// process environment.
func LoadConfig(path string) (*Config, error) {
	envPath := ".env"
	if path != "." {
		envPath = path + "/.env"
	}
	// A missing .env is normal in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	setDefaults(v, reflect.TypeOf(Config{}), "")

	v.SetConfigName(FileName)
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would only fail once the service runs.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Transport.Kind) {
	case "", transport.KindNone, transport.KindHTTP, transport.KindStorage, transport.KindDatabase:
	default:
		return fmt.Errorf("invalid transport kind %q", c.Transport.Kind)
	}
	if _, err := c.Collection.KindMap(); err != nil {
		return fmt.Errorf("invalid collection kinds: %w", err)
	}
	if _, err := c.Collection.DirectionList(); err != nil {
		return fmt.Errorf("invalid collection direction: %w", err)
	}
	return nil
}

// setDefaults walks t and registers the `default` tag of every leaf field
// under its dotted mapstructure key. Registering empty defaults too makes
// every key visible to AutomaticEnv.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || !field.IsExported() {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			setDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
