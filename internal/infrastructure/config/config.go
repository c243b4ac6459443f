package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		LogLevel        string        `toml:"log_level" default:"info" validate:"oneof=trace debug info warn error"`
		LogFormat       string        `toml:"log_format" default:"console" validate:"oneof=console json"`
		PollInterval    time.Duration `toml:"poll_interval" default:"5m" validate:"gte=1s"`
		DisplayDuration time.Duration `toml:"display_duration" default:"10s" validate:"gte=100ms"`
		TickInterval    time.Duration `toml:"tick_interval" default:"50ms" validate:"gte=1ms"`
		ErrorHold       time.Duration `toml:"error_hold" default:"2s" validate:"gte=0"`
		MaxLinkFailures int           `toml:"max_link_failures" default:"3" validate:"gte=0"`
	} `toml:"app"`

	Network struct {
		ProbeAddr      string        `toml:"probe_addr" default:"1.1.1.1:53" validate:"hostname_port"`
		ConnectTimeout time.Duration `toml:"connect_timeout" default:"20s" validate:"gt=0"`
	} `toml:"network"`

	Crypto struct {
		Enabled bool          `toml:"enabled" default:"true"`
		Symbols []string      `toml:"symbols" default:"[\"BTC\",\"ETH\",\"XRP\"]"`
		Convert string        `toml:"convert" default:"CAD" validate:"required,alpha"`
		BaseURL string        `toml:"base_url" default:"https://pro-api.coinmarketcap.com/v2/cryptocurrency/quotes/latest" validate:"required,url"`
		APIKey  string        `toml:"api_key" validate:"required_if=Enabled true"`
		Timeout time.Duration `toml:"timeout" default:"15s" validate:"gt=0"`
	} `toml:"crypto"`

	Equity struct {
		Enabled  bool          `toml:"enabled" default:"true"`
		Symbol   string        `toml:"symbol" default:"MSFT"`
		Currency string        `toml:"currency" default:"USD" validate:"required,alpha"`
		BaseURL  string        `toml:"base_url" default:"https://financialmodelingprep.com/stable/quote" validate:"required,url"`
		APIKey   string        `toml:"api_key" validate:"required_if=Enabled true"`
		Timeout  time.Duration `toml:"timeout" default:"15s" validate:"gt=0"`
	} `toml:"equity"`

	Market struct {
		Timezone string `toml:"timezone" default:"America/New_York" validate:"required"`
		Open     string `toml:"open" default:"09:05" validate:"required"`
		Close    string `toml:"close" default:"16:05" validate:"required"`
	} `toml:"market"`

	MQTT struct {
		Enabled         bool          `toml:"enabled" default:"true"`
		Host            string        `toml:"host" validate:"required_if=Enabled true"`
		Port            int           `toml:"port" default:"1883" validate:"gt=0,lte=65535"`
		ClientID        string        `toml:"client_id" default:"m5crypto"`
		Username        string        `toml:"username"`
		Password        string        `toml:"password"`
		TopicPrefix     string        `toml:"topic_prefix" default:"m5crypto" validate:"required"`
		DiscoveryPrefix string        `toml:"discovery_prefix" default:"homeassistant" validate:"required"`
		RetryInterval   time.Duration `toml:"retry_interval" default:"5s" validate:"gt=0"`
		PublishTimeout  time.Duration `toml:"publish_timeout" default:"5s" validate:"gt=0"`

		Device struct {
			ID           string `toml:"id" default:"m5crypto_display"`
			Name         string `toml:"name" default:"Crypto Price Display"`
			Model        string `toml:"model" default:"M5StickC Plus2"`
			Manufacturer string `toml:"manufacturer" default:"M5Stack"`
			SWVersion    string `toml:"sw_version" default:"2.2"`
		} `toml:"device"`
	} `toml:"mqtt"`

	Display struct {
		Console bool `toml:"console" default:"true"`
		Panel   bool `toml:"panel" default:"true"`
	} `toml:"display"`

	HTTP struct {
		Enabled bool   `toml:"enabled" default:"true"`
		Addr    string `toml:"addr" default:":8080"`
	} `toml:"http"`

	Storage struct {
		Enabled bool `toml:"enabled"`

		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path" default:"data/pricestick.db"`
		} `toml:"sqlite"`

		Redis struct {
			Enabled    bool   `toml:"enabled"`
			Addr       string `toml:"addr" default:"localhost:6379"`
			Password   string `toml:"password"`
			DB         int    `toml:"db"`
			Prefix     string `toml:"prefix" default:"pricestick"`
			TTLSeconds int    `toml:"ttl_seconds" default:"86400"`
		} `toml:"redis"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`
	} `toml:"storage"`
}

var validate = validator.New()

// Load reads defaults, then the TOML file at path, then .env and the process
// environment. The result is normalized and validated.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides secrets and the broker address from the environment.
func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&cfg.Crypto.APIKey, "CMC_API_KEY")
	set(&cfg.Equity.APIKey, "FMP_API_KEY")
	set(&cfg.MQTT.Host, "MQTT_HOST")
	set(&cfg.MQTT.Username, "MQTT_USER")
	set(&cfg.MQTT.Password, "MQTT_PASSWORD")
}

func validateConfig(cfg *Config) error {
	cfg.Crypto.Symbols = normalizeSymbols(cfg.Crypto.Symbols)
	cfg.Crypto.Convert = strings.ToUpper(strings.TrimSpace(cfg.Crypto.Convert))
	cfg.Equity.Symbol = strings.ToUpper(strings.TrimSpace(cfg.Equity.Symbol))
	cfg.Equity.Currency = strings.ToUpper(strings.TrimSpace(cfg.Equity.Currency))

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Crypto.Enabled && len(cfg.Crypto.Symbols) == 0 {
		return errors.New("crypto.symbols is empty but crypto enabled")
	}
	if cfg.Equity.Enabled && cfg.Equity.Symbol == "" {
		return errors.New("equity.symbol empty but enabled")
	}
	if !cfg.Crypto.Enabled && !cfg.Equity.Enabled {
		return errors.New("no asset group enabled")
	}
	if cfg.Equity.Enabled {
		for _, s := range cfg.Crypto.Symbols {
			if s == cfg.Equity.Symbol {
				return fmt.Errorf("symbol %s configured as crypto and equity", s)
			}
		}
	}
	if cfg.Storage.Enabled {
		if cfg.Storage.SQLite.Enabled && strings.TrimSpace(cfg.Storage.SQLite.Path) == "" {
			return errors.New("storage.sqlite.path empty but enabled")
		}
		if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
			return errors.New("storage.redis.addr empty but enabled")
		}
		if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
			return errors.New("storage.postgres.dsn empty but enabled")
		}
	}
	return nil
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
