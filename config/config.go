// Package config centralises runtime configuration for the trader runtime.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Environment identifies the runtime environment the trader operates in.
type Environment string

const (
	// EnvDev marks the development environment.
	EnvDev Environment = "dev"
	// EnvStaging marks the staging environment.
	EnvStaging Environment = "staging"
	// EnvProd marks the production environment.
	EnvProd Environment = "prod"
)

// Codec names for the execution wire encoding.
const (
	CodecMsgPack = "msgpack"
	CodecJSON    = "json"
)

// EndpointConfig locates the execution service.
type EndpointConfig struct {
	Host        string `yaml:"host"`
	CommandPort int    `yaml:"command_port"`
	EventPort   int    `yaml:"event_port"`
	Topic       string `yaml:"topic"`
}

// ExecutionConfig tunes the execution client.
type ExecutionConfig struct {
	Codec string `yaml:"codec"`
	// QueueSize bounds the client's internal message queue. Zero or
	// negative means unbounded; the queue then grows with backlog.
	QueueSize int `yaml:"queue_size"`
	// CommandsPerSecond throttles outbound commands. Zero disables the
	// throttle.
	CommandsPerSecond float64 `yaml:"commands_per_second"`
}

// AccountConfig seeds the simulated venue's account answers.
type AccountConfig struct {
	Currency        string `yaml:"currency"`
	Balance         string `yaml:"balance"`
	MarginBalance   string `yaml:"margin_balance"`
	MarginAvailable string `yaml:"margin_available"`
}

// Decimals parses the account balance fields.
func (a AccountConfig) Decimals() (balance, marginBalance, marginAvailable decimal.Decimal, err error) {
	if balance, err = decimal.NewFromString(a.Balance); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("account balance: %w", err)
	}
	if marginBalance, err = decimal.NewFromString(a.MarginBalance); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("account margin_balance: %w", err)
	}
	if marginAvailable, err = decimal.NewFromString(a.MarginAvailable); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("account margin_available: %w", err)
	}
	return balance, marginBalance, marginAvailable, nil
}

// TelemetryConfig configures the OTLP metrics exporter.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// ProfilingConfig enables continuous profiling.
type ProfilingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	ServerAddress string `yaml:"server_address"`
}

// Settings is the trader configuration tree loaded from defaults and YAML
// overrides.
type Settings struct {
	Environment Environment     `yaml:"environment"`
	Trader      string          `yaml:"trader"`
	Endpoint    EndpointConfig  `yaml:"endpoint"`
	Execution   ExecutionConfig `yaml:"execution"`
	Account     AccountConfig   `yaml:"account"`
	Telemetry   TelemetryConfig `yaml:"telemetry"`
	Profiling   ProfilingConfig `yaml:"profiling"`
}

// Default returns the default trader configuration.
func Default() Settings {
	return Settings{
		Environment: EnvDev,
		Trader:      "TRADER-001",
		Endpoint: EndpointConfig{
			Host:        "127.0.0.1",
			CommandPort: 5555,
			EventPort:   5556,
			Topic:       "events",
		},
		Execution: ExecutionConfig{
			Codec:             CodecMsgPack,
			QueueSize:         0,
			CommandsPerSecond: 0,
		},
		Account: AccountConfig{
			Currency:        "USD",
			Balance:         "100000",
			MarginBalance:   "100000",
			MarginAvailable: "80000",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "",
			ServiceName:  "trader",
		},
		Profiling: ProfilingConfig{
			Enabled:       false,
			ServerAddress: "http://localhost:4040",
		},
	}
}

// Load reads a trader configuration YAML document from disk and validates it.
func Load(path string) (Settings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = os.Getenv("TRADER_CONFIG")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = "config/trader.yaml"
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Settings{}, fmt.Errorf("open trader config: %w", err)
	}
	defer func() { _ = file.Close() }()

	return parse(file)
}

// LoadOrDefault loads the configuration file when present and falls back to
// defaults when it does not exist.
func LoadOrDefault(path string) (Settings, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Settings{}, err
}

func parse(reader io.Reader) (Settings, error) {
	bytes, err := io.ReadAll(reader)
	if err != nil {
		return Settings{}, fmt.Errorf("read trader config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(bytes, &cfg); err != nil {
		return Settings{}, fmt.Errorf("unmarshal trader config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// Validate performs semantic validation on the loaded configuration.
func (s Settings) Validate() error {
	switch s.Environment {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("environment must be dev|staging|prod")
	}
	if strings.TrimSpace(s.Trader) == "" {
		return fmt.Errorf("trader id required")
	}
	if strings.TrimSpace(s.Endpoint.Host) == "" {
		return fmt.Errorf("endpoint host required")
	}
	if s.Endpoint.CommandPort < 1 || s.Endpoint.CommandPort > 65535 {
		return fmt.Errorf("endpoint command_port must be in 1..65535")
	}
	if s.Endpoint.EventPort < 1 || s.Endpoint.EventPort > 65535 {
		return fmt.Errorf("endpoint event_port must be in 1..65535")
	}
	if s.Endpoint.CommandPort == s.Endpoint.EventPort {
		return fmt.Errorf("endpoint command_port and event_port must differ")
	}
	if strings.TrimSpace(s.Endpoint.Topic) == "" {
		return fmt.Errorf("endpoint topic required")
	}
	codec := strings.ToLower(strings.TrimSpace(s.Execution.Codec))
	if codec != CodecMsgPack && codec != CodecJSON {
		return fmt.Errorf("execution codec must be msgpack|json")
	}
	if s.Execution.CommandsPerSecond < 0 {
		return fmt.Errorf("execution commands_per_second must be >=0")
	}
	if strings.TrimSpace(s.Account.Currency) == "" {
		return fmt.Errorf("account currency required")
	}
	if _, _, _, err := s.Account.Decimals(); err != nil {
		return err
	}
	if s.Profiling.Enabled && strings.TrimSpace(s.Profiling.ServerAddress) == "" {
		return fmt.Errorf("profiling server_address required when enabled")
	}
	return nil
}
