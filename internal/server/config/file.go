package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/flagx"
	"github.com/dmitrijs2005/dadkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. Interval fields use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Absent
// keys leave the current value untouched.
type FileConfig struct {
	HTTPAddr                     string         `json:"http_addr" yaml:"http_addr"`
	HealthAddrGRPC               string         `json:"health_addr_grpc" yaml:"health_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	S3AccessKey                  string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey                  string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	RedisURL                     string         `json:"redis_url" yaml:"redis_url"`
	ProfileCacheTTL              timex.Duration `json:"profile_cache_ttl" yaml:"profile_cache_ttl"`
	KafkaBrokers                 []string       `json:"kafka_brokers" yaml:"kafka_brokers"`
	KafkaTopic                   string         `json:"kafka_topic" yaml:"kafka_topic"`
	LLMBaseURL                   string         `json:"llm_base_url" yaml:"llm_base_url"`
	LLMAPIKey                    string         `json:"llm_api_key" yaml:"llm_api_key"`
	LLMModel                     string         `json:"llm_model" yaml:"llm_model"`
	LLMTimeout                   timex.Duration `json:"llm_timeout" yaml:"llm_timeout"`
	RewriteRequestsPerMinute     int            `json:"rewrite_requests_per_minute" yaml:"rewrite_requests_per_minute"`
	RewriteBurst                 int            `json:"rewrite_burst" yaml:"rewrite_burst"`
	CORSOrigins                  []string       `json:"cors_origins" yaml:"cors_origins"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	LogFormat                    string         `json:"log_format" yaml:"log_format"`
	ShutdownTimeout              timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// parseFile loads the file named by -c/-config in args and overlays every
// non-zero value onto config. Files ending in .yaml or .yml are decoded as
// YAML, anything else as JSON. A missing or malformed file panics, since the
// operator asked for it explicitly.
func parseFile(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, c)
	default:
		err = json.Unmarshal(raw, c)
	}
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddrGRPC, c.HealthAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisURL, c.RedisURL)
	setDuration(&config.ProfileCacheTTL, c.ProfileCacheTTL)
	if len(c.KafkaBrokers) > 0 {
		config.KafkaBrokers = c.KafkaBrokers
	}
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.LLMBaseURL, c.LLMBaseURL)
	setString(&config.LLMAPIKey, c.LLMAPIKey)
	setString(&config.LLMModel, c.LLMModel)
	setDuration(&config.LLMTimeout, c.LLMTimeout)
	if c.RewriteRequestsPerMinute > 0 {
		config.RewriteRequestsPerMinute = c.RewriteRequestsPerMinute
	}
	if c.RewriteBurst > 0 {
		config.RewriteBurst = c.RewriteBurst
	}
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
