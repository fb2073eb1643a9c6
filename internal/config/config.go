package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"nucoinc/domain/search"
	"nucoinc/internal/errors"
)

// Config is the process configuration, read from the environment. Physical
// constants live in search.Parameters; this only selects and locates things.
type Config struct {
	// Population selects the search-parameter set: bns, bbh or nsbh.
	Population string

	// StorePath is the SQLite table-store file.
	StorePath string

	// AeffTable names the effective-area table inside the bundle.
	AeffTable string

	// EventsTable names the historical event sample inside the bundle.
	EventsTable string

	// ParamsFile optionally overrides the built-in population constants
	// with a YAML file keyed by population name.
	ParamsFile string

	// HTTPPort is the scoring-server port.
	HTTPPort string

	// Observer site for the horizontal-frame conversion.
	ObserverLatDeg float64
	ObserverLonDeg float64
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Population:     getEnvOrDefault("NUCOINC_POPULATION", search.PopulationBNS),
		StorePath:      getEnvOrDefault("NUCOINC_STORE", "nucoinc.db"),
		AeffTable:      getEnvOrDefault("NUCOINC_AEFF_TABLE", "IC86_II_effectiveArea"),
		EventsTable:    getEnvOrDefault("NUCOINC_EVENTS_TABLE", "IC86_VII_exp"),
		ParamsFile:     os.Getenv("NUCOINC_PARAMS_FILE"),
		HTTPPort:       getEnvOrDefault("NUCOINC_PORT", "8080"),
		ObserverLatDeg: getEnvFloatOrDefault("NUCOINC_OBSERVER_LAT_DEG", -89.99),
		ObserverLonDeg: getEnvFloatOrDefault("NUCOINC_OBSERVER_LON_DEG", -63.45),
	}
	if cfg.StorePath == "" {
		return nil, errors.New(errors.CodeConfig, "NUCOINC_STORE must not be empty")
	}
	return cfg, nil
}

// Parameters resolves the search parameters for the configured population,
// applying the YAML override file when one is configured.
func (c *Config) Parameters() (search.Parameters, error) {
	if c.ParamsFile == "" {
		return search.ForPopulation(c.Population)
	}

	raw, err := os.ReadFile(c.ParamsFile)
	if err != nil {
		return search.Parameters{}, errors.Wrap(errors.CodeConfig, "read params file", err)
	}
	populations := make(map[string]search.Parameters)
	if err := yaml.Unmarshal(raw, &populations); err != nil {
		return search.Parameters{}, errors.Wrap(errors.CodeConfig, "parse params file", err)
	}
	p, ok := populations[c.Population]
	if !ok {
		return search.ForPopulation(c.Population)
	}
	if p.Population == "" {
		p.Population = c.Population
	}
	if err := p.Validate(); err != nil {
		return search.Parameters{}, err
	}
	return p, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
