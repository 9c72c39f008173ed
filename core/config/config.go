package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"tablesync/core/database"
	"tablesync/core/kvstore"
	"tablesync/core/logger"
	"tablesync/core/metrics"
	"tablesync/core/storage"
	"tablesync/feature/tablesync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the base name of the optional configuration file.
const FileName = "tablesync"

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Database holds configuration for the relational database connection.
	Database database.Config `mapstructure:"database"`
	// KV holds configuration for the key-value table store.
	KV kvstore.Config `mapstructure:"kv"`
	// Storage holds configuration for the object storage used by the object backend.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Sync holds the synchronization settings.
	Sync tablesync.Config `mapstructure:"sync"`
	// Metrics holds configuration for metrics export.
	Metrics metrics.Config `mapstructure:"metrics"`
}

// LoadConfig loads configuration from the .env file, environment variables and an
// optional tablesync.yaml. path is either a directory searched for both files or
// the path of a YAML file, which must then exist.
func LoadConfig(path string) (*Config, error) {
	dir, file := path, ""
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		dir, file = filepath.Dir(path), path
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. KV_BACKEND -> kv.backend)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks field constraints and the settings that depend on each other.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}

	switch c.KV.Backend {
	case "redis":
		if c.KV.RedisAddr == "" {
			return errors.New("invalid config: kv.redis_addr is required for the redis backend")
		}
	case "bolt":
		if c.KV.BoltPath == "" {
			return errors.New("invalid config: kv.bolt_path is required for the bolt backend")
		}
	case "object":
		if c.Storage.Bucket == "" || c.Storage.Endpoint == "" {
			return errors.New("invalid config: storage.endpoint and storage.bucket are required for the object backend")
		}
		if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
			return errors.New("invalid config: storage.access_key and storage.secret_key are required for the object backend")
		}
	}

	if c.Sync.Lock && c.KV.Backend != "redis" {
		return errors.New("invalid config: sync.lock requires kv.backend redis")
	}
	return nil
}

// newValidator reports fields by their mapstructure key.
func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := field.Tag.Get("mapstructure")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return validate
}

func describe(fe validator.FieldError) string {
	key := fe.Namespace()
	if i := strings.IndexByte(key, '.'); i >= 0 {
		key = key[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", key, fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Lists default to empty rather than a single empty element
		if field.Type.Kind() == reflect.Slice && defaultValue == "" {
			v.SetDefault(key, []string{})
			continue
		}
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
