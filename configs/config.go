package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		Env      string `koanf:"env"`
		HTTPAddr string `koanf:"http_addr"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Cache struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cache"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers      []string `koanf:"brokers"`
		GroupID      string   `koanf:"group_id"`
		PaymentTopic string   `koanf:"payment_topic"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`
}

// Dev reports whether the service runs with developer error detail enabled.
func (c Config) Dev() bool { return c.App.Env == "dev" }

// Load reads base.yaml, overlays <env>.yaml when present, then overlays
// environment variables (prefix SHOPAPI_, nested keys joined with __,
// e.g. SHOPAPI_MYSQL__DSN).
func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// optional env overlay, missing file is fine for local runs
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	if err := k.Load(env.Provider("SHOPAPI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SHOPAPI_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.App.Env = envName
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	return nil
}
