package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	CORS     CORSConfig     `yaml:"cors"`
	Editor   EditorConfig   `yaml:"editor"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            string        `yaml:"port" default:"4000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// Addr is the listen address in host:port form
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type DatabaseConfig struct {
	Driver     string `yaml:"driver" default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" default:"./blog.db"`
	MySQLDSN   string `yaml:"mysql_dsn" default:""`
	MaxOpen    int    `yaml:"max_open_conns" default:"10"`
	MaxIdle    int    `yaml:"max_idle_conns" default:"5"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" default:"false"`
	Addr     string        `yaml:"addr" default:"localhost:6379"`
	Password string        `yaml:"password" default:""`
	DB       int           `yaml:"db" default:"0"`
	TTL      time.Duration `yaml:"ttl" default:"5m"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins" default:"*"`
}

type EditorConfig struct {
	APIBaseURL     string        `yaml:"api_base_url" default:"http://localhost:4000"`
	DebounceWindow time.Duration `yaml:"debounce_window" default:"1s"`
	SaveInterval   time.Duration `yaml:"save_interval" default:"15s"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"console"`
}

// Load builds the configuration from defaults, the YAML file at path and the environment, in that order.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			log.Info().Str("path", path).Msg("Config file not found, using defaults")
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server or editor cannot run with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverMySQL:
		if c.Database.MySQLDSN == "" {
			return fmt.Errorf("database.mysql_dsn is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Editor.DebounceWindow <= 0 {
		return fmt.Errorf("editor.debounce_window must be positive")
	}
	if c.Editor.SaveInterval <= 0 {
		return fmt.Errorf("editor.save_interval must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setFromEnv("PORT", &cfg.Server.Port)
	setFromEnv("DATABASE_DRIVER", &cfg.Database.Driver)
	setFromEnv("SQLITE_DB_PATH", &cfg.Database.SQLitePath)
	setFromEnv("MYSQL_DSN", &cfg.Database.MySQLDSN)
	setFromEnv("REDIS_PASSWORD", &cfg.Redis.Password)
	setFromEnv("LOG_LEVEL", &cfg.Logging.Level)
	setFromEnv("BLOG_API_URL", &cfg.Editor.APIBaseURL)

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowOrigins = splitList(origins)
	}
}

func setFromEnv(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var durationType = reflect.TypeOf(time.Duration(0))

// ApplyDefaults fills every field carrying a default tag, recursing into nested structs
func ApplyDefaults(config any) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			ApplyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch {
		case field.Type() == durationType:
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
		case field.Kind() == reflect.String:
			field.SetString(defaultValue)
		case field.Kind() == reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case field.Kind() == reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
			if field.Len() == 0 {
				field.Set(reflect.ValueOf(splitList(defaultValue)).Convert(field.Type()))
			}
		default:
			log.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
