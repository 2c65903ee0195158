package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Download DownloadConfig `mapstructure:"download" yaml:"download"`
	Fetch    FetchConfig    `mapstructure:"fetch" yaml:"fetch"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`

	Port string `mapstructure:"port" yaml:"port"`
}

type DownloadConfig struct {
	OutDir      string `mapstructure:"out_dir" yaml:"out_dir"`
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
}

type FetchConfig struct {
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	RetryCount        int    `mapstructure:"retry_count" yaml:"retry_count"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
	UserAgent         string `mapstructure:"user_agent" yaml:"user_agent"`

	// InsecureSkipVerify disables TLS certificate validation for playlist
	// fetches. Off by default; enabling it is logged at startup.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type LogConfig struct {
	Path          string `mapstructure:"path" yaml:"path"`
	Level         string `mapstructure:"level" yaml:"level"`
	IncludeStdout bool   `mapstructure:"include_stdout" yaml:"include_stdout"`
}

type StoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
}

func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func (f FetchConfig) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelaySeconds) * time.Second
}

func Load(path string) (*Config, error) {

	if path == "" {
		path = "config.yaml"
	}

	v := viper.New()

	// Set Defaults
	v.SetDefault("port", "8080")
	v.SetDefault("download.out_dir", "./video_output")
	v.SetDefault("download.concurrency", 8)
	v.SetDefault("fetch.timeout_seconds", 60)
	v.SetDefault("fetch.retry_count", 3)
	v.SetDefault("fetch.retry_delay_seconds", 2)
	v.SetDefault("fetch.insecure_skip_verify", false)
	v.SetDefault("log.path", "gom3u8.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.include_stdout", true)
	v.SetDefault("store.sqlite_path", "./data/gom3u8.db")

	// The config file is optional: every key has a default and the tool is
	// usable straight from the command line.
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// Support Environment Variables
	v.SetEnvPrefix("GOM3U8")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Download.OutDir == "" {
		c.Download.OutDir = "./video_output"
	}

	if c.Download.Concurrency <= 0 {
		c.Download.Concurrency = 8
	}

	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be positive, got %d", c.Fetch.TimeoutSeconds)
	}

	if c.Fetch.RetryCount < 1 {
		return fmt.Errorf("fetch.retry_count must be at least 1, got %d", c.Fetch.RetryCount)
	}

	if c.Fetch.RetryDelaySeconds < 0 {
		return fmt.Errorf("fetch.retry_delay_seconds cannot be negative, got %d", c.Fetch.RetryDelaySeconds)
	}

	return nil
}
