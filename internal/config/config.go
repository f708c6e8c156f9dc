package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Local API
	Port        int    `envconfig:"PORT" default:"7600"`
	Environment string `envconfig:"ENV" default:"development"`

	// Session identity
	SessionID string `envconfig:"SESSION_ID" required:"true"`
	UserID    string `envconfig:"USER_ID" required:"true"`

	// Monitor backend
	MonitorURL string `envconfig:"MONITOR_URL" required:"true"`
	ReportURL  string `envconfig:"REPORT_URL" default:""`

	// Required devices
	RequireCamera     bool `envconfig:"REQUIRE_CAMERA" default:"true"`
	RequireMicrophone bool `envconfig:"REQUIRE_MICROPHONE" default:"false"`

	// Reliability tuning
	QueueCapacity         int           `envconfig:"QUEUE_CAPACITY" default:"500"`
	DevicePollInterval    time.Duration `envconfig:"DEVICE_POLL_INTERVAL" default:"1500ms"`
	CoolingWindow         time.Duration `envconfig:"COOLING_WINDOW" default:"60s"`
	ReconnectInitialDelay time.Duration `envconfig:"RECONNECT_INITIAL_DELAY" default:"3s"`
	ReconnectMaxDelay     time.Duration `envconfig:"RECONNECT_MAX_DELAY" default:"60s"`
	ReconnectMultiplier   float64       `envconfig:"RECONNECT_MULTIPLIER" default:"1.5"`
	FlushInterval         time.Duration `envconfig:"FLUSH_INTERVAL" default:"30s"`

	// Detector
	DetectorProvider string `envconfig:"DETECTOR_PROVIDER" default:"mock"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
