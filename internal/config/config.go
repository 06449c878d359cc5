package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. BASESTATION_SERVER_PORT.
const EnvPrefix = "BASESTATION"

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Handover HandoverConfig `yaml:"handover" mapstructure:"handover"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" mapstructure:"cors_allowed_origins"`
}

// HandoverConfig configures the external handover source. An empty BaseURL
// disables external resolution.
type HandoverConfig struct {
	BaseURL                 string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs             int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxConcurrency          int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
	RateLimit               float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	CircuitFailureThreshold int     `yaml:"circuit_failure_threshold" mapstructure:"circuit_failure_threshold"`
	CircuitResetSecs        int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// Enabled reports whether an external handover source is configured.
func (h HandoverConfig) Enabled() bool {
	return strings.TrimSpace(h.BaseURL) != ""
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
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("handover.base_url", EnvPrefix+"_HANDOVER_BASE_URL", "HANDOVER_BASE_URL"); err != nil {
		return nil, eris.Wrap(err, "config: bind handover env")
	}

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_secs", 30)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("handover.base_url", "")
	v.SetDefault("handover.timeout_secs", 5)
	v.SetDefault("handover.max_concurrency", 8)
	v.SetDefault("handover.rate_limit", 20)
	v.SetDefault("handover.circuit_failure_threshold", 5)
	v.SetDefault("handover.circuit_reset_secs", 30)
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
	cfg.Handover.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Handover.BaseURL), "/")

	return &cfg, nil
}

// Validate checks the settings a command needs. mode is "serve" or "calc".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RequestTimeoutSecs <= 0 {
			errs = append(errs, "server.request_timeout_secs must be > 0")
		}
	case "calc":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Handover.Enabled() {
		if !strings.HasPrefix(c.Handover.BaseURL, "http://") && !strings.HasPrefix(c.Handover.BaseURL, "https://") {
			errs = append(errs, "handover.base_url must start with http:// or https://")
		}
		if c.Handover.TimeoutSecs <= 0 {
			errs = append(errs, "handover.timeout_secs must be > 0")
		}
		if c.Handover.MaxConcurrency < 1 || c.Handover.MaxConcurrency > 64 {
			errs = append(errs, "handover.max_concurrency must be between 1 and 64")
		}
		if c.Handover.RateLimit < 0 {
			errs = append(errs, "handover.rate_limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
