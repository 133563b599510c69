// Package config provides configuration loading and management for taskcanvas.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDataDir holds the database, locks and config.
	DefaultDataDir = ".taskcanvas"
	// FileName is the config file inside the data directory.
	FileName = "config.yaml"
)

// DefaultPath is the default config file location.
var DefaultPath = filepath.Join(DefaultDataDir, FileName)

// Config is the root configuration.
type Config struct {
	DataDir string       `json:"data_dir" mapstructure:"data_dir" yaml:"data_dir"`
	UserID  string       `json:"user_id"  mapstructure:"user_id"  yaml:"user_id"`
	Sync    SyncConfig   `json:"sync"     mapstructure:"sync"     yaml:"sync"`
	Layout  LayoutConfig `json:"layout"   mapstructure:"layout"   yaml:"layout"`
	Server  ServerConfig `json:"server"   mapstructure:"server"   yaml:"server"`
	Report  ReportConfig `json:"report"   mapstructure:"report"   yaml:"report"`
}

// SyncConfig tunes remote writes.
type SyncConfig struct {
	MemoDebounceMS      int `json:"memo_debounce_ms"      mapstructure:"memo_debounce_ms"      yaml:"memo_debounce_ms"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	ReadyTimeoutSeconds int `json:"ready_timeout_seconds" mapstructure:"ready_timeout_seconds" yaml:"ready_timeout_seconds"`
}

// MemoDebounce returns the memo write debounce delay.
func (s SyncConfig) MemoDebounce() time.Duration {
	return time.Duration(s.MemoDebounceMS) * time.Millisecond
}

// WriteTimeout returns the per-write remote timeout.
func (s SyncConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ReadyTimeout bounds the wait for the first snapshots.
func (s SyncConfig) ReadyTimeout() time.Duration {
	return time.Duration(s.ReadyTimeoutSeconds) * time.Second
}

// LayoutConfig sets the auto-arrange grid.
type LayoutConfig struct {
	ColumnSpacing float64 `json:"column_spacing" mapstructure:"column_spacing" yaml:"column_spacing"`
	RowSpacing    float64 `json:"row_spacing"    mapstructure:"row_spacing"    yaml:"row_spacing"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Addr        string `json:"addr"          mapstructure:"addr"          yaml:"addr"`
	BlobBaseURL string `json:"blob_base_url" mapstructure:"blob_base_url" yaml:"blob_base_url"`
}

// ReportConfig selects the text-generation backend for reports.
type ReportConfig struct {
	Provider       string `json:"provider"           mapstructure:"provider"        yaml:"provider"`
	Model          string `json:"model"              mapstructure:"model"           yaml:"model"`
	APIKeyEnv      string `json:"api_key_env"        mapstructure:"api_key_env"     yaml:"api_key_env"`
	BaseURL        string `json:"base_url,omitempty" mapstructure:"base_url"        yaml:"base_url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"    mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// Timeout returns the report request timeout.
func (r ReportConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir: DefaultDataDir,
		UserID:  "local",
		Sync: SyncConfig{
			MemoDebounceMS:      200,
			WriteTimeoutSeconds: 10,
			ReadyTimeoutSeconds: 5,
		},
		Layout: LayoutConfig{
			ColumnSpacing: 280,
			RowSpacing:    140,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			BlobBaseURL: "http://localhost:8080",
		},
		Report: ReportConfig{
			Provider:       "openai",
			Model:          "gpt-4.1-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 60,
		},
	}
}

// SetDefaults registers every default key on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("user_id", d.UserID)
	v.SetDefault("sync.memo_debounce_ms", d.Sync.MemoDebounceMS)
	v.SetDefault("sync.write_timeout_seconds", d.Sync.WriteTimeoutSeconds)
	v.SetDefault("sync.ready_timeout_seconds", d.Sync.ReadyTimeoutSeconds)
	v.SetDefault("layout.column_spacing", d.Layout.ColumnSpacing)
	v.SetDefault("layout.row_spacing", d.Layout.RowSpacing)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.blob_base_url", d.Server.BlobBaseURL)
	v.SetDefault("report.provider", d.Report.Provider)
	v.SetDefault("report.model", d.Report.Model)
	v.SetDefault("report.api_key_env", d.Report.APIKeyEnv)
	v.SetDefault("report.base_url", d.Report.BaseURL)
	v.SetDefault("report.timeout_seconds", d.Report.TimeoutSeconds)
}

// Decode validates v's settings against the schema and decodes them.
func Decode(v *viper.Viper) (Config, error) {
	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// MarshalYAML renders cfg as a config file.
func MarshalYAML(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
