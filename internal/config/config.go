package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath   = "config.toml"
	DefaultHTTPAddr     = ":8080"
	DefaultRegion       = "larksuite"
	DefaultPGHost       = "127.0.0.1"
	DefaultPGPort       = 5432
	DefaultPGUser       = "postgres"
	DefaultPGDatabase   = "larkgw"
	DefaultPGSSLMode    = "disable"
	DefaultAnthropicURL = "https://api.anthropic.com"
	DefaultModel        = "claude-opus-4-1-20250805"

	// Cache caps. History counts individual turns, not exchanges.
	DefaultHistoryCap  = 200
	DefaultDocumentCap = 10
	DefaultFileCap     = 100
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Feishu    FeishuConfig    `toml:"feishu"`
	Anthropic AnthropicConfig `toml:"anthropic"`
	Postgres  PostgresConfig  `toml:"postgres"`
	Cache     CacheConfig     `toml:"cache"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// FeishuConfig holds the app credentials for the Lark/Feishu open platform.
// BotOpenID is optional; when empty the mention gate falls back to treating
// any group mention as addressing the bot.
type FeishuConfig struct {
	AppID             string `toml:"app_id" validate:"required"`
	AppSecret         string `toml:"app_secret" validate:"required"`
	EncryptKey        string `toml:"encrypt_key"`
	VerificationToken string `toml:"verification_token"`
	BotOpenID         string `toml:"bot_open_id"`
	Region            string `toml:"region" validate:"omitempty,oneof=feishu larksuite"`
}

type AnthropicConfig struct {
	APIKey  string `toml:"api_key" validate:"required"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

type PostgresConfig struct {
	// Enabled switches the persistence mirror on. The gateway runs fully
	// in-memory without it; caches reset on restart.
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type CacheConfig struct {
	HistoryCap  int `toml:"history_cap"`
	DocumentCap int `toml:"document_cap"`
	FileCap     int `toml:"file_cap"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Feishu: FeishuConfig{
			Region: DefaultRegion,
		},
		Anthropic: AnthropicConfig{
			BaseURL: DefaultAnthropicURL,
			Model:   DefaultModel,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Cache: CacheConfig{
			HistoryCap:  DefaultHistoryCap,
			DocumentCap: DefaultDocumentCap,
			FileCap:     DefaultFileCap,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides keeps credential material out of the config file when the
// deployment prefers environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FEISHU_APP_ID"); v != "" {
		cfg.Feishu.AppID = v
	}
	if v := os.Getenv("FEISHU_APP_SECRET"); v != "" {
		cfg.Feishu.AppSecret = v
	}
	if v := os.Getenv("FEISHU_ENCRYPT_KEY"); v != "" {
		cfg.Feishu.EncryptKey = v
	}
	if v := os.Getenv("FEISHU_VERIFICATION_TOKEN"); v != "" {
		cfg.Feishu.VerificationToken = v
	}
	if v := os.Getenv("FEISHU_BOT_ID"); v != "" {
		cfg.Feishu.BotOpenID = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Anthropic.APIKey = v
	}
}

// Validate checks that required credentials are present.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.Feishu); err != nil {
		return fmt.Errorf("feishu config: %w", err)
	}
	if err := v.Struct(c.Anthropic); err != nil {
		return fmt.Errorf("anthropic config: %w", err)
	}
	return nil
}
