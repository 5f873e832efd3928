// Package config loads run configuration from defaults, an optional config
// file, a .env file and ECOMFUNNEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// Supported bulk loader targets
const (
	DriverMySQL      = "mysql"
	DriverPostgres   = "postgres"
	DriverClickHouse = "clickhouse"
)

// Columns written per event row by the bulk loader.
const EventColumns = 6

// MaxBindParameters is the placeholder ceiling shared by MySQL and PostgreSQL
// for a single statement.
const MaxBindParameters = 65535

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Loader   LoaderConfig   `mapstructure:"loader"`
	Server   ServerConfig   `mapstructure:"server"`
}

type AppConfig struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"loglevel"`
}

type InputConfig struct {
	Path string `mapstructure:"path"`
}

type OutputConfig struct {
	Directory          string `mapstructure:"directory"`
	FunnelFile         string `mapstructure:"funnelfile"`
	FirstPageFile      string `mapstructure:"firstpagefile"`
	ProductViewersFile string `mapstructure:"productviewersfile"`
	AnomaliesFile      string `mapstructure:"anomaliesfile"`
}

type AnalysisConfig struct {
	// StrictSessions fails the run when a session carries more than one user.
	StrictSessions bool `mapstructure:"strictsessions"`
}

type LoaderConfig struct {
	Driver         string        `mapstructure:"driver"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database"`
	Table          string        `mapstructure:"table"`
	ChunkSize      int           `mapstructure:"chunksize"`
	ConnectTimeout time.Duration `mapstructure:"connecttimeout"`
}

type ServerConfig struct {
	Port          string `mapstructure:"port"`
	AllowedOrigin string `mapstructure:"allowedorigin"`
	JWTSecret     string `mapstructure:"jwtsecret"`
	APIKey        string `mapstructure:"apikey"`
	GinMode       string `mapstructure:"ginmode"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", Development)
	v.SetDefault("app.loglevel", "info")

	v.SetDefault("input.path", "data.csv")

	v.SetDefault("output.directory", ".")
	v.SetDefault("output.funnelfile", "funnel_data.csv")
	v.SetDefault("output.firstpagefile", "first_page_analysis.csv")
	v.SetDefault("output.productviewersfile", "product_viewers.csv")
	v.SetDefault("output.anomaliesfile", "abnormal_behavior.csv")

	v.SetDefault("analysis.strictsessions", false)

	v.SetDefault("loader.driver", DriverMySQL)
	v.SetDefault("loader.host", "localhost")
	v.SetDefault("loader.port", 0)
	v.SetDefault("loader.user", "root")
	v.SetDefault("loader.password", "")
	v.SetDefault("loader.database", "autodoc")
	v.SetDefault("loader.table", "user_events")
	v.SetDefault("loader.chunksize", 10000)
	v.SetDefault("loader.connecttimeout", 10*time.Second)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowedorigin", "http://localhost:3000")
	v.SetDefault("server.jwtsecret", "")
	v.SetDefault("server.apikey", "")
	v.SetDefault("server.ginmode", "debug")
}

// Load reads configuration. file may be empty; a missing .env is not an error.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ECOMFUNNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the loader and analyses depend on.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return errors.New("input.path is required")
	}
	if err := c.Loader.Validate(); err != nil {
		return err
	}
	return nil
}

func (l LoaderConfig) Validate() error {
	switch l.Driver {
	case DriverMySQL, DriverPostgres, DriverClickHouse:
	default:
		return fmt.Errorf("unsupported loader.driver %q", l.Driver)
	}
	if l.ChunkSize <= 0 {
		return fmt.Errorf("loader.chunksize must be positive, got %d", l.ChunkSize)
	}
	if l.Driver != DriverClickHouse && l.ChunkSize*EventColumns > MaxBindParameters {
		return fmt.Errorf("loader.chunksize %d exceeds %d rows per statement", l.ChunkSize, MaxBindParameters/EventColumns)
	}
	if l.Table == "" || strings.ContainsAny(l.Table, " `\"';") {
		return fmt.Errorf("invalid loader.table %q", l.Table)
	}
	return nil
}

// ResolvedPort returns the configured port or the driver's standard one.
func (l LoaderConfig) ResolvedPort() int {
	if l.Port != 0 {
		return l.Port
	}
	switch l.Driver {
	case DriverPostgres:
		return 5432
	case DriverClickHouse:
		return 9000
	default:
		return 3306
	}
}

// OutputPath joins the output directory with name.
func (o OutputConfig) OutputPath(name string) string {
	return filepath.Join(o.Directory, name)
}
