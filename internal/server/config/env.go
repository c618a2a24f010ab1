package config

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/dadkeeper/internal/flagx"
)

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// parseEnv overlays values from environment variables. Unset or unparsable
// variables leave the current value in place.
func parseEnv(config *Config, lookup lookupFunc) {
	env := envReader{lookup: lookup}

	env.str("HTTP_ADDR", &config.HTTPAddr)
	env.str("GRPC_HEALTH_ADDR", &config.HealthAddrGRPC)
	env.str("DATABASE_DSN", &config.DatabaseDSN)
	env.str("SECRET_KEY", &config.SecretKey)
	env.duration("ACCESS_TOKEN_TTL", &config.AccessTokenValidityDuration)
	env.duration("REFRESH_TOKEN_TTL", &config.RefreshTokenValidityDuration)
	env.str("S3_ACCESS_KEY", &config.S3AccessKey)
	env.str("S3_SECRET_KEY", &config.S3SecretKey)
	env.str("S3_BUCKET", &config.S3Bucket)
	env.str("S3_REGION", &config.S3Region)
	env.str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	env.str("REDIS_URL", &config.RedisURL)
	env.duration("PROFILE_CACHE_TTL", &config.ProfileCacheTTL)
	env.list("KAFKA_BROKERS", &config.KafkaBrokers)
	env.str("KAFKA_TOPIC", &config.KafkaTopic)
	env.str("OPENAI_BASE_URL", &config.LLMBaseURL)
	env.str("OPENAI_API_KEY", &config.LLMAPIKey)
	env.str("OPENAI_MODEL", &config.LLMModel)
	env.duration("OPENAI_TIMEOUT", &config.LLMTimeout)
	env.integer("REWRITE_REQUESTS_PER_MINUTE", &config.RewriteRequestsPerMinute)
	env.integer("REWRITE_BURST", &config.RewriteBurst)
	env.list("CORS_ORIGINS", &config.CORSOrigins)
	env.str("LOG_LEVEL", &config.LogLevel)
	env.str("LOG_FORMAT", &config.LogFormat)
	env.duration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
}

type envReader struct {
	lookup lookupFunc
}

func (e envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func (e envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}

func (e envReader) list(key string, dst *[]string) {
	if v, ok := e.get(key); ok {
		if items := flagx.SplitList(v); len(items) > 0 {
			*dst = items
		}
	}
}
