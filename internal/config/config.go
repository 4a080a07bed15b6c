package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Warehouse WarehouseConfig `yaml:"warehouse" mapstructure:"warehouse"`
	Crosswalk CrosswalkConfig `yaml:"crosswalk" mapstructure:"crosswalk"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the local build-log database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// WarehouseConfig configures the Postgres warehouse the load command
// writes to.
type WarehouseConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// CrosswalkConfig carries default input and output paths for the build
// pipeline. Command-line flags override any of these.
type CrosswalkConfig struct {
	Mapping        string `yaml:"mapping" mapstructure:"mapping"`
	National       string `yaml:"national" mapstructure:"national"`
	Regional       string `yaml:"regional" mapstructure:"regional"`
	Codes          string `yaml:"codes" mapstructure:"codes"`
	Output         string `yaml:"output" mapstructure:"output"`
	TotalsOutput   string `yaml:"totals_output" mapstructure:"totals_output"`
	WeightOn       string `yaml:"weight_on" mapstructure:"weight_on"`
	Encoding       string `yaml:"encoding" mapstructure:"encoding"`
	MissingSectors string `yaml:"missing_sectors" mapstructure:"missing_sectors"`
	ImputeConfig   string `yaml:"impute_config" mapstructure:"impute_config"`
	PadMissing     bool   `yaml:"pad_missing" mapstructure:"pad_missing"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RAMPR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.path", "rampr.db")
	v.SetDefault("warehouse.batch_size", 5000)
	v.SetDefault("crosswalk.mapping", "data/qcew_to_io_v1.csv")
	v.SetDefault("crosswalk.national", "data/QCEW_All_0_All.csv")
	v.SetDefault("crosswalk.codes", "data/bea_402_sector_codes.txt")
	v.SetDefault("crosswalk.output", "bridge.csv")
	v.SetDefault("crosswalk.totals_output", "io_totals.csv")
	v.SetDefault("crosswalk.weight_on", "wages")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration needed by the given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "build":
		switch c.Crosswalk.WeightOn {
		case "wages", "employment", "establishments":
		default:
			problems = append(problems, "crosswalk.weight_on must be wages, employment, or establishments")
		}
	case "validate":
		// Paths come from arguments; nothing to check.
	case "load":
		if c.Warehouse.DatabaseURL == "" {
			problems = append(problems, "warehouse.database_url is required")
		}
		if c.Warehouse.BatchSize < 1 || c.Warehouse.BatchSize > 50000 {
			problems = append(problems, "warehouse.batch_size must be between 1 and 50000")
		}
	case "status":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
