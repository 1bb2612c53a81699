package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Relevance RelevanceConfig `yaml:"relevance"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// KafkaConfig holds Kafka/Redpanda configuration
type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	FeedbackTopic  string   `yaml:"feedback_topic"`
	PositionsTopic string   `yaml:"positions_topic"`
	EventsTopic    string   `yaml:"events_topic"`
	ConsumerGroup  string   `yaml:"consumer_group"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RelevanceConfig holds scoring and retraining settings
type RelevanceConfig struct {
	TrainingWindowDays int           `yaml:"training_window_days"`
	UserFeedbackDays   int           `yaml:"user_feedback_days"`
	RetrainSchedule    string        `yaml:"retrain_schedule"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8082",
			Host: "0.0.0.0",
		},
		Database: DatabaseConfig{
			Host:     "postgres",
			Port:     "5432",
			User:     "trader",
			Password: "trader5",
			DBName:   "trading_platform",
			SSLMode:  "disable",
		},
		Kafka: KafkaConfig{
			Brokers:        []string{"localhost:19092"},
			FeedbackTopic:  "alerts.feedback",
			PositionsTopic: "trading.positions",
			EventsTopic:    "alerts.events",
			ConsumerGroup:  "alert-relevance-service",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Relevance: RelevanceConfig{
			TrainingWindowDays: 90,
			UserFeedbackDays:   30,
			RetrainSchedule:    "@every 6h",
			CacheTTL:           5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_PATH if set, and finally environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = parseBrokers(brokers)
	}
	cfg.Kafka.FeedbackTopic = getEnv("KAFKA_FEEDBACK_TOPIC", cfg.Kafka.FeedbackTopic)
	cfg.Kafka.PositionsTopic = getEnv("KAFKA_POSITIONS_TOPIC", cfg.Kafka.PositionsTopic)
	cfg.Kafka.EventsTopic = getEnv("KAFKA_EVENTS_TOPIC", cfg.Kafka.EventsTopic)
	cfg.Kafka.ConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", cfg.Kafka.ConsumerGroup)

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Relevance.TrainingWindowDays = getEnvInt("TRAINING_WINDOW_DAYS", cfg.Relevance.TrainingWindowDays)
	cfg.Relevance.UserFeedbackDays = getEnvInt("USER_FEEDBACK_DAYS", cfg.Relevance.UserFeedbackDays)
	cfg.Relevance.RetrainSchedule = getEnv("RETRAIN_SCHEDULE", cfg.Relevance.RetrainSchedule)
	if ttl, err := time.ParseDuration(os.Getenv("CACHE_TTL")); err == nil {
		cfg.Relevance.CacheTTL = ttl
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	if pretty, err := strconv.ParseBool(os.Getenv("LOG_PRETTY")); err == nil {
		cfg.Log.Pretty = pretty
	}
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one Kafka broker is required")
	}
	if c.Relevance.TrainingWindowDays <= 0 {
		return fmt.Errorf("training window must be positive, got %d", c.Relevance.TrainingWindowDays)
	}
	if c.Relevance.UserFeedbackDays <= 0 {
		return fmt.Errorf("user feedback window must be positive, got %d", c.Relevance.UserFeedbackDays)
	}
	if c.Relevance.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative, got %s", c.Relevance.CacheTTL)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}
