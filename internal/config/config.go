// Package config provides functionality for managing configuration options
// for the proxy server using command-line flags, a config file and
// environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port" yaml:"port"`

	// DatabaseDSN holds the database connection string for contact storage.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// BackendURL is the base URL of the admin backend that owns sessions.
	BackendURL string `json:"backend_url" yaml:"backend_url"`

	// RedisAddr enables the shared reference-data tier when non-empty.
	RedisAddr string `json:"redis_addr" yaml:"redis_addr"`

	// RefDataTTL bounds how long reference lists are kept in Redis.
	RefDataTTL time.Duration `json:"ref_data_ttl" yaml:"ref_data_ttl"`

	// ContactRetention is how long contact submissions are kept.
	ContactRetention time.Duration `json:"contact_retention" yaml:"contact_retention"`

	// LogLevel is passed to the logger ("debug", "info", ...).
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Config is the path to the Config file.
	Config string `json:"-" yaml:"-"`
}

// Register binds the option flags to fs with their default values.
func (o *Options) Register(fs *flag.FlagSet) {
	fs.StringVar(&o.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&o.BackendURL, "b", "", "admin backend base URL")
	fs.StringVar(&o.RedisAddr, "r", "", "redis address for reference data")
	fs.DurationVar(&o.RefDataTTL, "ref-ttl", 24*time.Hour, "reference data TTL")
	fs.DurationVar(&o.ContactRetention, "retention", 180*24*time.Hour, "contact retention")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
}

// Load parses args into a fresh Options, then applies the config file and
// environment overrides, in that order.
func Load(fs *flag.FlagSet, args []string) (*Options, error) {
	options := &Options{}
	options.Register(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			if err := options.readFile(options.Config); err != nil {
				return nil, err
			}
		}
	}

	options.applyEnv()
	return options, nil
}

// Parse parses the process flags and environment variables. It exits the
// process on a malformed config file.
func Parse() *Options {
	options, err := Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	return options
}

func (o *Options) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return fc.apply(o)
}

func (o *Options) applyEnv() {
	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		o.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		o.DatabaseDSN = dsn
	}
	if backend := os.Getenv("BACKEND_URL"); backend != "" {
		o.BackendURL = backend
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		o.RedisAddr = redisAddr
	}
}

// fileConfig mirrors Options with durations as strings ("24h") so both
// JSON and YAML files stay readable.
type fileConfig struct {
	Port             string `json:"port" yaml:"port"`
	DatabaseDSN      string `json:"database_dsn" yaml:"database_dsn"`
	BackendURL       string `json:"backend_url" yaml:"backend_url"`
	RedisAddr        string `json:"redis_addr" yaml:"redis_addr"`
	RefDataTTL       string `json:"ref_data_ttl" yaml:"ref_data_ttl"`
	ContactRetention string `json:"contact_retention" yaml:"contact_retention"`
	LogLevel         string `json:"log_level" yaml:"log_level"`
}

func (fc fileConfig) apply(o *Options) error {
	setString(&o.Port, fc.Port)
	setString(&o.DatabaseDSN, fc.DatabaseDSN)
	setString(&o.BackendURL, fc.BackendURL)
	setString(&o.RedisAddr, fc.RedisAddr)
	setString(&o.LogLevel, fc.LogLevel)
	if err := setDuration(&o.RefDataTTL, fc.RefDataTTL); err != nil {
		return fmt.Errorf("ref_data_ttl: %w", err)
	}
	if err := setDuration(&o.ContactRetention, fc.ContactRetention); err != nil {
		return fmt.Errorf("contact_retention: %w", err)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
