package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
)

const insecureJWTSecret = "your-very-secret-key-for-promotion-service"

// Config holds all configuration for the service.
type Config struct {
	ServiceName            string `mapstructure:"SERVICE_NAME"`
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	GRPCPort               string `mapstructure:"GRPC_PORT"`
	MongoURI               string `mapstructure:"MONGO_URI"`
	MongoDatabase          string `mapstructure:"MONGO_DATABASE"`
	RedisAddr              string `mapstructure:"REDIS_ADDR"`
	RedisPassword          string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int    `mapstructure:"REDIS_DB"`
	NATSURL                string `mapstructure:"NATS_URL"`
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	SweepSchedule          string        `mapstructure:"SWEEP_SCHEDULE"`
	SweepConcurrency       int           `mapstructure:"SWEEP_CONCURRENCY"`
	SweepLeaseTTL          time.Duration `mapstructure:"SWEEP_LEASE_TTL"`
	BumpInterval           time.Duration `mapstructure:"BUMP_INTERVAL"`
	PresenceDuration       time.Duration `mapstructure:"PRESENCE_DURATION"`
	ReportDescriptionLimit int           `mapstructure:"REPORT_DESCRIPTION_LIMIT"`
	ListingCacheTTL        time.Duration `mapstructure:"LISTING_CACHE_TTL"`
	ShutdownTimeout        time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	SMTPHost              string `mapstructure:"SMTP_HOST"`
	SMTPPort              int    `mapstructure:"SMTP_PORT"`
	SMTPUser              string `mapstructure:"SMTP_USER"`
	SMTPPassword          string `mapstructure:"SMTP_PASSWORD"`
	SMTPSender            string `mapstructure:"SMTP_SENDER"`
	ModerationAlertEmails string `mapstructure:"MODERATION_ALERT_EMAILS"`
}

// AlertRecipients splits MODERATION_ALERT_EMAILS on commas.
func (c *Config) AlertRecipients() []string {
	var out []string
	for _, addr := range strings.Split(c.ModerationAlertEmails, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "promotion-service")
	v.SetDefault("HTTP_PORT", "8086")
	v.SetDefault("GRPC_PORT", "50056")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "marketplace_promotions")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("JWT_SECRET", insecureJWTSecret)
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9096")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	v.SetDefault("SWEEP_SCHEDULE", "@every 1m")
	v.SetDefault("SWEEP_CONCURRENCY", 8)
	v.SetDefault("SWEEP_LEASE_TTL", "50s")
	v.SetDefault("BUMP_INTERVAL", "72h")
	v.SetDefault("PRESENCE_DURATION", "0s")
	v.SetDefault("REPORT_DESCRIPTION_LIMIT", 500)
	v.SetDefault("LISTING_CACHE_TTL", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SENDER", "")
	v.SetDefault("MODERATION_ALERT_EMAILS", "")
}

// LoadConfig reads configuration from environment variables. godotenv is applied in main.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	return load(viper.New(), appLogger)
}

func load(v *viper.Viper, appLogger *logger.Logger) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == insecureJWTSecret || cfg.JWTSecret == "" {
		appLogger.Warn("JWT_SECRET is set to its default insecure value or is empty. Please set a strong secret in your environment.")
	}
	if cfg.SMTPHost == "" || len(cfg.AlertRecipients()) == 0 {
		appLogger.Info("SMTP alerts for high-severity reports are disabled.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("nats_url", cfg.NATSURL),
		zap.Bool("jwt_secret_present", cfg.JWTSecret != ""),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
		zap.String("sweep_schedule", cfg.SweepSchedule),
		zap.Duration("bump_interval", cfg.BumpInterval),
		zap.Duration("presence_duration", cfg.PresenceDuration),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.MongoURI == "":
		return fmt.Errorf("MONGO_URI is not set. This is required")
	case c.MongoDatabase == "":
		return fmt.Errorf("MONGO_DATABASE is not set. This is required")
	case c.SweepSchedule == "":
		return fmt.Errorf("SWEEP_SCHEDULE must not be empty")
	case c.SweepLeaseTTL < time.Second:
		return fmt.Errorf("SWEEP_LEASE_TTL must be at least 1s, got %s", c.SweepLeaseTTL)
	case c.BumpInterval <= 0:
		return fmt.Errorf("BUMP_INTERVAL must be positive, got %s", c.BumpInterval)
	case c.PresenceDuration < 0:
		return fmt.Errorf("PRESENCE_DURATION must not be negative, got %s", c.PresenceDuration)
	case c.ReportDescriptionLimit <= 0:
		return fmt.Errorf("REPORT_DESCRIPTION_LIMIT must be positive, got %d", c.ReportDescriptionLimit)
	}
	return nil
}
