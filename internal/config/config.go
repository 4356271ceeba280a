// Package config загружает настройки сервера.
//
// Порядок: значения по умолчанию, затем YAML-файл (если указан),
// затем переменные окружения PORT, DATABASE_URL, MEDIA_DIR.
// Флаги командной строки применяются в cmd/server поверх результата.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Драйверы хранилища.
const (
	DriverInMemory = "in-memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config - все настройки сервера.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Storage    StorageConfig    `yaml:"storage"`
	Media      MediaConfig      `yaml:"media"`
	Log        LogConfig        `yaml:"log"`
	Pagination PaginationConfig `yaml:"pagination"`
	Session    SessionConfig    `yaml:"session"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type StorageConfig struct {
	// Driver: in-memory, postgres или sqlite.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Debug включает логирование SQL.
	Debug bool `yaml:"debug"`
}

type MediaConfig struct {
	// Dir - каталог загруженных изображений.
	Dir            string `yaml:"dir"`
	URL            string `yaml:"url"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PaginationConfig struct {
	PageSize int `yaml:"page_size"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// Default возвращает настройки для локальной разработки.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Storage:    StorageConfig{Driver: DriverInMemory},
		Media:      MediaConfig{Dir: "./media", URL: "/media/", MaxUploadBytes: 5 << 20},
		Log:        LogConfig{Level: "info", Format: "text"},
		Pagination: PaginationConfig{PageSize: 10},
		Session:    SessionConfig{CookieName: "sessionid", TTL: 24 * time.Hour},
	}
}

// Load читает файл path (может быть пустым) и применяет окружение.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
	if dsn := getenv("DATABASE_URL"); dsn != "" {
		c.Storage.DSN = dsn
	}
	if dir := getenv("MEDIA_DIR"); dir != "" {
		c.Media.Dir = dir
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverInMemory:
	case DriverPostgres, DriverSQLite:
		if c.Storage.DSN == "" {
			errs = append(errs, fmt.Errorf("storage.dsn (or DATABASE_URL) must be set for %s storage", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Pagination.PageSize <= 0 {
		errs = append(errs, errors.New("pagination.page_size must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookie_name must be set"))
	}
	if c.Media.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("media.max_upload_bytes must be positive"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
