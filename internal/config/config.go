// Package config provides configuration management for the trailnet
// pipeline and report server.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration loaded from YAML.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Topology TopologyConfig `yaml:"topology"`
}

// ServerConfig holds the report API's HTTP server configuration.
type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
}

// DatabaseConfig holds the graph store's connection configuration. Driver
// selects between the embeddable sqlite backend and an optional postgres
// deployment, both served through the same store.Executor interface.
type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=sqlite postgres"`
	Path     string `yaml:"path"`     // sqlite file path
	Host     string `yaml:"host"`     // postgres only
	Port     int    `yaml:"port"`     // postgres only
	User     string `yaml:"user"`     // postgres only
	Password string `yaml:"password"` // postgres only
	DBName   string `yaml:"dbname"`   // postgres only
	SSLMode  string `yaml:"sslmode"`  // postgres only
}

// RedisConfig holds the geometry memoization cache's connection settings.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
}

// TopologyConfig holds every tunable the nine topology stages read (spec
// §6 "Tunables").
type TopologyConfig struct {
	SnapMeters               float64 `yaml:"snap_meters" validate:"gt=0"`
	TrailBridgeMeters        float64 `yaml:"trail_bridge_meters" validate:"gt=0"`
	VertexMergeMeters        float64 `yaml:"vertex_merge_meters" validate:"gt=0"`
	GapBridgeMeters          float64 `yaml:"gap_bridge_meters" validate:"gt=0"`
	ConnectorToleranceMeters float64 `yaml:"connector_tolerance_meters" validate:"gt=0"`
	MaxConnectorLengthMeters float64 `yaml:"max_connector_length_meters" validate:"gt=0"`
	ChainJoinMeters          float64 `yaml:"chain_join_meters" validate:"gt=0"`
	MaxChainEdges            int     `yaml:"max_chain_edges" validate:"gt=0"`
	DedupPolicy              string  `yaml:"dedup_policy" validate:"oneof=keep_shortest keep_longest"`
	MinTrailLengthMeters     float64 `yaml:"min_trail_length_meters" validate:"gte=0"`
	MaxPasses                int     `yaml:"max_passes" validate:"gt=0"`
	SimplifyToleranceMeters  float64 `yaml:"simplify_tolerance_meters" validate:"gte=0"`
	ConnectorNamePatterns    []string `yaml:"connector_name_patterns"`
}

// DefaultConfig returns configuration with the spec's suggested defaults
// (spec §6 "Tunables", default column).
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "trailnet.db",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			TTL:     30 * time.Minute,
		},
		Topology: TopologyConfig{
			SnapMeters:               1.0,
			TrailBridgeMeters:        8.0,
			VertexMergeMeters:        3.0,
			GapBridgeMeters:          15.0,
			ConnectorToleranceMeters: 10.0,
			MaxConnectorLengthMeters: 200.0,
			ChainJoinMeters:          0.5,
			MaxChainEdges:            64,
			DedupPolicy:              "keep_shortest",
			MinTrailLengthMeters:     5.0,
			MaxPasses:                3,
			SimplifyToleranceMeters:  1.0,
			ConnectorNamePatterns:    []string{"connector", "cutoff", "link"},
		},
	}
}

// LoadFromYAML loads configuration from a YAML file, overlaying it on
// DefaultConfig.
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is controlled by application
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks structural constraints via struct tags, then the
// cross-field constraints the tags can't express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Database.Driver == "postgres" {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required for the postgres driver")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required for the postgres driver")
		}
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("database path is required for the sqlite driver")
	}

	if c.Topology.VertexMergeMeters < c.Topology.SnapMeters {
		return fmt.Errorf("vertex_merge_meters must be >= snap_meters")
	}

	return nil
}
