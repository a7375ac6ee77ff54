// Package config loads the hnsearch TOML configuration file.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/hnsearch"
	"github.com/pelletier/go-toml/v2"
)

// Transport kinds.
const (
	TransportHTTP    = "http"
	TransportAlgolia = "algolia"
	TransportMemory  = "memory"
)

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreDynamoDB = "dynamodb"
)

type Config struct {
	Transport   string   `toml:"transport"`
	BaseURL     string   `toml:"base_url"`
	Timeout     Duration `toml:"timeout"`
	TitleFilter bool     `toml:"title_filter"`

	HTTP    HTTPConfig    `toml:"http"`
	Memory  MemoryConfig  `toml:"memory"`
	Algolia AlgoliaConfig `toml:"algolia"`
	Store   StoreConfig   `toml:"store"`
}

type HTTPConfig struct {
	HitsPerPage       int     `toml:"hits_per_page,omitempty"`
	Tags              string  `toml:"tags,omitempty"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type MemoryConfig struct {
	// Latency delays every in-memory fetch.
	Latency  Duration `toml:"latency"`
	// Generate adds this many random stories to the sample set.
	Generate int      `toml:"generate"`
}

type AlgoliaConfig struct {
	Index       string `toml:"index"`
	Environment string `toml:"environment,omitempty"`
	SecretARN   string `toml:"secret_arn,omitempty"`
}

type StoreConfig struct {
	Type      string `toml:"type"`
	Path      string `toml:"path,omitempty"`
	Table     string `toml:"table,omitempty"`
	Partition string `toml:"partition,omitempty"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// DefaultDir returns the directory holding the config file and database.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "getting home directory")
	}
	return filepath.Join(home, ".config", "hnsearch"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func GetDefaultConfig() (*Config, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, errors.Wrap(err, "getting default config directory")
	}
	return &Config{
		Transport: TransportHTTP,
		BaseURL:   hnsearch.DefaultBaseURL,
		Timeout:   Duration{10 * time.Second},
		HTTP: HTTPConfig{
			RequestsPerSecond: 3,
			Burst:             3,
		},
		Algolia: AlgoliaConfig{
			Index: "Item_production",
		},
		Store: StoreConfig{
			Type:      StoreSQLite,
			Path:      filepath.Join(dir, "hnsearch.db"),
			Table:     "hnsearch",
			Partition: "default",
		},
	}, nil
}

// Load reads the config at path. A missing file yields the defaults and
// unset fields fall back to their defaults.
func Load(path string) (*Config, error) {
	defaults, err := GetDefaultConfig()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	config := *defaults
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if config.Transport == "" {
		config.Transport = defaults.Transport
	}
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout.Duration <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Store.Type == "" {
		config.Store.Type = defaults.Store.Type
	}
	if config.Store.Path == "" {
		config.Store.Path = defaults.Store.Path
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks that the transport and store kinds are known.
func (c *Config) Validate() error {
	if !slices.Contains([]string{TransportHTTP, TransportAlgolia, TransportMemory}, c.Transport) {
		return errors.Newf("unknown transport %q", c.Transport)
	}
	if !slices.Contains([]string{StoreMemory, StoreSQLite, StoreDynamoDB}, c.Store.Type) {
		return errors.Newf("unknown store %q", c.Store.Type)
	}
	if c.Transport == TransportAlgolia && c.Algolia.Index == "" {
		return errors.New("algolia transport requires an index name")
	}
	if c.Store.Type == StoreDynamoDB && c.Store.Table == "" {
		return errors.New("dynamodb store requires a table name")
	}
	return nil
}

func (c *Config) SaveConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	return os.WriteFile(path, data, 0644)
}
