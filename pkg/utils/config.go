// Package utils loads process configuration.
//
// Values are layered: built-in defaults, then an optional YAML file named by
// MANGASHELF_CONFIG, then MANGASHELF_* environment variables. A double
// underscore nests, so MANGASHELF_AUTH__JWT_SECRET sets auth.jwt_secret.
package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"mangashelf/pkg/database"
)

const (
	EnvPrefix     = "MANGASHELF_"
	ConfigPathEnv = "MANGASHELF_CONFIG"

	// DevSecret is the default JWT secret. Validate refuses it outside dev.
	DevSecret = "dev-secret-change-me"
)

type Config struct {
	Env      string          `koanf:"env"`
	Server   ServerConfig    `koanf:"server"`
	Database database.Config `koanf:"database"`
	Catalog  CatalogConfig   `koanf:"catalog"`
	Auth     AuthConfig      `koanf:"auth"`
	Log      LogConfig       `koanf:"log"`
	Browse   BrowseConfig    `koanf:"browse"`
}

type ServerConfig struct {
	HTTPAddr        string        `koanf:"http_addr"`
	GRPCAddr        string        `koanf:"grpc_addr"`
	MirrorAddr      string        `koanf:"mirror_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	TrustedProxies  []string      `koanf:"trusted_proxies"`
}

// CatalogConfig selects where sessions load the catalog from. URL wins over
// File; with neither set the imported sqlite table is used.
type CatalogConfig struct {
	URL          string        `koanf:"url"`
	File         string        `koanf:"file"`
	CoverBaseURL string        `koanf:"cover_base_url"`
	Timeout      time.Duration `koanf:"timeout"`
}

type AuthConfig struct {
	JWTSecret   string        `koanf:"jwt_secret"`
	JWTIssuer   string        `koanf:"jwt_issuer"`
	JWTDuration time.Duration `koanf:"jwt_duration"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type BrowseConfig struct {
	Locale        string        `koanf:"locale"`
	PageSize      int           `koanf:"page_size"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

func Defaults() Config {
	return Config{
		Env: "dev",
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":9090",
			MirrorAddr:      ":8090",
			ShutdownTimeout: 10 * time.Second,
			TrustedProxies:  []string{"127.0.0.1"},
		},
		Database: database.DefaultConfig(),
		Catalog: CatalogConfig{
			Timeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:   DevSecret,
			JWTIssuer:   "mangashelf",
			JWTDuration: 24 * time.Hour,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Browse: BrowseConfig{
			Locale:        "en",
			PageSize:      24,
			SessionTTL:    2 * time.Hour,
			SweepInterval: time.Minute,
		},
	}
}

// Load builds the configuration from defaults, file and environment.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	if err := splitList(k, "server.trusted_proxies"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps MANGASHELF_SERVER__HTTP_ADDR to server.http_addr.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	if s == "CONFIG" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

// splitList turns a comma-separated env value into a slice.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("server.http_addr is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Env != "dev" && c.Auth.JWTSecret == DevSecret {
		errs = append(errs, errors.New("auth.jwt_secret must be changed outside dev"))
	}
	if c.Auth.JWTDuration <= 0 {
		errs = append(errs, errors.New("auth.jwt_duration must be positive"))
	}
	if c.Browse.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("browse.page_size must be positive, got %d", c.Browse.PageSize))
	}
	if c.Catalog.Timeout < 0 {
		errs = append(errs, errors.New("catalog.timeout must not be negative"))
	}
	return errors.Join(errs...)
}
