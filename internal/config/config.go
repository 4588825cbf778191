package config

import (
	"fmt"
	"time"

	"github.com/RishiKendai/foldercheck/internal/configs/env"
	"github.com/RishiKendai/foldercheck/internal/plagiarism"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// Storage
	StorageRoot      string
	ExtractRoot      string
	MaxZipEntryBytes int64

	// JWT
	JWTSecret string
	JWTIssuer string

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute int
	WorkerPoolSize       int

	// Computation
	ComputationTimeout     time.Duration
	ShutdownTimeout        time.Duration
	IncludeFileComparisons bool

	// Comparison thresholds
	MinCharLength  int
	MinLineCount   int
	MaxLengthRatio float64
	MossK          int
	MossWindow     int
	ByteK          int
	MossWeight     float64
	ByteWeight     float64
	HighConfidence float64

	// Logging
	LogLevel  string
	LogFormat string

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "plagiarism:checks")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "plagiarism:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "plagiarism:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// Storage
	cfg.StorageRoot = env.GetEnv("STORAGE_ROOT", "./storage")
	cfg.ExtractRoot = env.GetEnv("EXTRACT_ROOT", "")
	cfg.MaxZipEntryBytes = int64(env.GetEnvInt("MAX_ZIP_ENTRY_BYTES", 10<<20))

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "foldercheck")

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)
	cfg.WorkerPoolSize = env.GetEnvInt("WORKER_POOL_SIZE", 0)

	// Computation
	timeoutMinutes := env.GetEnvInt("COMPUTATION_TIMEOUT_MINUTES", 30)
	cfg.ComputationTimeout = time.Duration(timeoutMinutes) * time.Minute
	cfg.ShutdownTimeout = env.GetEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	cfg.IncludeFileComparisons = env.GetEnvBool("INCLUDE_FILE_COMPARISONS", false)

	// Comparison thresholds
	defaults := plagiarism.DefaultOptions()
	cfg.MinCharLength = env.GetEnvInt("MIN_CHAR_LENGTH", defaults.MinCharLength)
	cfg.MinLineCount = env.GetEnvInt("MIN_LINE_COUNT", defaults.MinLineCount)
	cfg.MaxLengthRatio = env.GetEnvFloat("MAX_LENGTH_RATIO", defaults.MaxLengthRatio)
	cfg.MossK = env.GetEnvInt("MOSS_K", defaults.MossK)
	cfg.MossWindow = env.GetEnvInt("MOSS_WINDOW", defaults.MossWindow)
	cfg.ByteK = env.GetEnvInt("BYTE_K", defaults.ByteK)
	cfg.MossWeight = env.GetEnvFloat("MOSS_WEIGHT", defaults.MossWeight)
	cfg.ByteWeight = env.GetEnvFloat("BYTE_WEIGHT", defaults.ByteWeight)
	cfg.HighConfidence = env.GetEnvFloat("HIGH_CONFIDENCE", defaults.HighConfidence)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogFormat = env.GetEnv("LOG_FORMAT", "json")

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.StorageRoot == "" {
		return fmt.Errorf("STORAGE_ROOT is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	if c.MaxZipEntryBytes <= 0 {
		return fmt.Errorf("MAX_ZIP_ENTRY_BYTES must be greater than 0")
	}
	if c.MossK <= 0 || c.MossWindow <= 0 || c.ByteK <= 0 {
		return fmt.Errorf("MOSS_K, MOSS_WINDOW and BYTE_K must be greater than 0")
	}
	if c.MossWeight < 0 || c.ByteWeight < 0 || c.MossWeight+c.ByteWeight == 0 {
		return fmt.Errorf("MOSS_WEIGHT and BYTE_WEIGHT must be non-negative and not both 0")
	}
	if c.MaxLengthRatio < 1 {
		return fmt.Errorf("MAX_LENGTH_RATIO must be at least 1")
	}
	return nil
}

// CompareOptions maps the threshold settings onto comparison options.
func (c *Config) CompareOptions() plagiarism.Options {
	return plagiarism.Options{
		MinCharLength:  c.MinCharLength,
		MinLineCount:   c.MinLineCount,
		MaxLengthRatio: c.MaxLengthRatio,
		MossK:          c.MossK,
		MossWindow:     c.MossWindow,
		ByteK:          c.ByteK,
		MossWeight:     c.MossWeight,
		ByteWeight:     c.ByteWeight,
		HighConfidence: c.HighConfidence,
	}
}
