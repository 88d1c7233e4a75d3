package nasc

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config describes the diagnostics of an engine. The zero Config logs
// nothing and records no metrics.
type Config struct {
	// LogLevel is one of debug, info, warn, error. Empty disables logging.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "json" for production encoding, anything else for console.
	LogFormat string `yaml:"log_format"`

	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig controls the Prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`

	// Registerer defaults to prometheus.DefaultRegisterer. Every engine built
	// with the same Registerer and Namespace records into the same counters.
	Registerer prometheus.Registerer `yaml:"-"`
}

// LoadConfig reads a YAML config file.
//
//	log_level: debug
//	log_format: console
//	metrics:
//	  enabled: true
//	  namespace: app_di
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// ConfigFromEnv builds a Config from NASC_LOG_LEVEL, NASC_LOG_FORMAT,
// NASC_METRICS and NASC_METRICS_NAMESPACE. Variables set in the process
// environment win over the ones found in envFiles (".env" when none are
// given). Missing files are ignored and the process environment is never
// modified. NASC_METRICS accepts the forms of strconv.ParseBool; any other
// non-empty value is an error.
func ConfigFromEnv(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	fileValues := make(map[string]string)
	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, seen := fileValues[k]; !seen {
				fileValues[k] = v
			}
		}
	}

	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileValues[key]
	}

	cfg := Config{
		LogLevel:  lookup("NASC_LOG_LEVEL"),
		LogFormat: lookup("NASC_LOG_FORMAT"),
		Metrics: MetricsConfig{
			Namespace: lookup("NASC_METRICS_NAMESPACE"),
		},
	}

	if raw := lookup("NASC_METRICS"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, fmt.Errorf("parse NASC_METRICS: %w", err)
		}
		cfg.Metrics.Enabled = enabled
	}

	return cfg, nil
}

// BuildLogger creates the logger described by the config.
func (c Config) BuildLogger() (*zap.Logger, error) {
	if c.LogLevel == "" {
		return zap.NewNop(), nil
	}

	var level zapcore.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if strings.ToLower(c.LogFormat) == "json" {
		zapConfig := zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(level)
		return zapConfig.Build()
	}

	return newDevelopmentLogger(level), nil
}

// newDevelopmentLogger creates a console logger writing to stderr.
func newDevelopmentLogger(level zapcore.Level) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)

	return zap.New(core, zap.AddCaller()).Named("nasc")
}
