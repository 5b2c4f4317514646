package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full ecget configuration. Every field has a usable default
// so the tool runs without a config file at all.
type Config struct {
	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stderr"`
	} `yaml:"logging"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr" default:":9090"`
	} `yaml:"metrics"`

	WaterOffice struct {
		DisclaimerURL   string        `yaml:"disclaimer_url" default:"https://wateroffice.ec.gc.ca/include/disclaimer.php" validate:"url"`
		DataURL         string        `yaml:"data_url" default:"https://wateroffice.ec.gc.ca/graph/graph_e.html" validate:"url"`
		DisclaimerDelay time.Duration `yaml:"disclaimer_delay" default:"2s"`
		Timeout         time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"wateroffice"`

	Buoy struct {
		DataURL string        `yaml:"data_url" default:"https://aquatic.pyr.ec.gc.ca/realtimebuoys/default.aspx" validate:"url"`
		Timeout time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"buoy"`

	Datamart struct {
		Host        string        `yaml:"host" default:"dd.weather.gc.ca" validate:"hostname_rfc1123"`
		Port        int           `yaml:"port" default:"5672" validate:"min=1,max=65535"`
		User        string        `yaml:"user" default:"anonymous"`
		Password    string        `yaml:"password" default:"anonymous"`
		VHost       string        `yaml:"vhost" default:"/"`
		Exchange    string        `yaml:"exchange" default:"xpublic"`
		Lifetime    time.Duration `yaml:"lifetime" default:"15m"`
		QueueExpiry time.Duration `yaml:"queue_expiry"`
		QueuesDir   string        `yaml:"queues_dir" default:"./queues"`
		Timeout     time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"datamart"`
}

// DatamartURL assembles the AMQP broker URL for the Datamart connection.
func (c *Config) DatamartURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		c.Datamart.User, c.Datamart.Password,
		c.Datamart.Host, c.Datamart.Port, c.Datamart.VHost)
}

// Load reads and parses a YAML configuration file. A missing file is not an
// error: the built-in defaults apply.
func Load(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ECGET_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ECGET_DATAMART_HOST"); v != "" {
		c.Datamart.Host = v
	}
	if v := os.Getenv("ECGET_DATAMART_USER"); v != "" {
		c.Datamart.User = v
	}
	if v := os.Getenv("ECGET_DATAMART_PASSWORD"); v != "" {
		c.Datamart.Password = v
	}
	if v := os.Getenv("ECGET_QUEUES_DIR"); v != "" {
		c.Datamart.QueuesDir = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
