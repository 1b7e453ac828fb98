// Package config loads the settings of the gtfsdurations command.
//
// Settings come from, in increasing order of precedence: environment variables (optionally read from
// a .env file), a YAML file and command line flags. Flags are applied by the caller before Validate.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Path to the zipped GTFS static feed.
	Feed   string `yaml:"feed" validate:"required"`
	Method string `yaml:"method"`
	// Trip IDs to restrict the computation to. Empty means all trips.
	Trips []string `yaml:"trips" validate:"dive,required"`
	// Path to a precomputed service pattern CSV. Empty means derive patterns from the feed.
	ServicePatterns string `yaml:"service_patterns"`
	Workers         int    `yaml:"workers" validate:"gte=0"`
	// Path of the CSV output. Empty means standard output.
	Output string `yaml:"output"`
	// Path of a Prometheus textfile to write metrics to. Empty disables metrics.
	MetricsTextfile string `yaml:"metrics_textfile"`
}

const envPrefix = "GTFSDURATIONS_"

// Load reads the configuration from the environment and, if path is not empty, the YAML file at path.
// The result is not validated.
func Load(path string) (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Feed:            os.Getenv(envPrefix + "FEED"),
		Method:          os.Getenv(envPrefix + "METHOD"),
		ServicePatterns: os.Getenv(envPrefix + "SERVICE_PATTERNS"),
		Output:          os.Getenv(envPrefix + "OUTPUT"),
		MetricsTextfile: os.Getenv(envPrefix + "METRICS_TEXTFILE"),
		Workers:         1,
	}
	if v := os.Getenv(envPrefix + "TRIPS"); v != "" {
		cfg.Trips = SplitList(v)
	}
	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %sWORKERS: %q", envPrefix, v)
		}
		cfg.Workers = n
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	var result []string
	for _, elem := range strings.Split(s, ",") {
		if elem = strings.TrimSpace(elem); elem != "" {
			result = append(result, elem)
		}
	}
	return result
}
