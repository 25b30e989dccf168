package config

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	defaultServiceName     = "gramhealth-assistant"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 8080
	defaultRequestTimeout  = 15 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultLogLevel        = "info"
	defaultDiseasesPath    = "data/diseases.json"
	defaultSchemesPath     = "data/schemes.json"
	defaultHospitalCache   = "data/hospital_cache.json"
	defaultHospitalSeed    = "data/hospital_seed.json"
	defaultHospitalTTL     = 12 * time.Hour
)

var defaultKnowledgePaths = []string{"data/knowledge.json", "data/health_portal.json"}

// Config holds all configuration for the assistant service.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Logging   LoggingConfig   `yaml:"logging"`
	Datasets  DatasetsConfig  `yaml:"datasets"`
	Hospitals HospitalsConfig `yaml:"hospitals"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `env:"ASSISTANT_PORT" yaml:"port"`
	Debug           bool          `env:"APP_DEBUG"      yaml:"debug"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `env:"LOG_LEVEL" yaml:"level"`
	Development bool   `yaml:"development"`
	Output      string `yaml:"output"`
}

// DatasetsConfig points at the static knowledge datasets.
type DatasetsConfig struct {
	DiseasesPath   string   `env:"DISEASES_PATH" yaml:"diseases_path"`
	KnowledgePaths []string `env:"KNOWLEDGE_PATHS" yaml:"knowledge_paths"`
	SchemesPath    string   `env:"SCHEMES_PATH" yaml:"schemes_path"`
}

// HospitalsConfig controls the hospital locator.
type HospitalsConfig struct {
	Enabled   bool          `env:"HOSPITALS_ENABLED" yaml:"enabled"`
	CachePath string        `yaml:"cache_path"`
	SeedPath  string        `yaml:"seed_path"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := load(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants that defaults cannot fix.
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("service port %d out of range", c.Service.Port)
	}
	if c.Datasets.DiseasesPath == "" {
		return fmt.Errorf("datasets.diseases_path must be set")
	}
	if len(c.Datasets.KnowledgePaths) == 0 {
		return fmt.Errorf("datasets.knowledge_paths must not be empty")
	}
	if c.Datasets.SchemesPath == "" {
		return fmt.Errorf("datasets.schemes_path must be set")
	}
	return nil
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setLoggingDefaults(&cfg.Logging)
	setDatasetDefaults(&cfg.Datasets)
	setHospitalDefaults(&cfg.Hospitals)
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = defaultRequestTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = defaultShutdownTimeout
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
}

func setDatasetDefaults(d *DatasetsConfig) {
	if d.DiseasesPath == "" {
		d.DiseasesPath = defaultDiseasesPath
	}
	if len(d.KnowledgePaths) == 0 {
		d.KnowledgePaths = append([]string(nil), defaultKnowledgePaths...)
	}
	if d.SchemesPath == "" {
		d.SchemesPath = defaultSchemesPath
	}
}

func setHospitalDefaults(h *HospitalsConfig) {
	if h.CachePath == "" {
		h.CachePath = defaultHospitalCache
	}
	if h.SeedPath == "" {
		h.SeedPath = defaultHospitalSeed
	}
	if h.CacheTTL == 0 {
		h.CacheTTL = defaultHospitalTTL
	}
}
