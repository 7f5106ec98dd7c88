package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. cmd/server loads an
// optional .env file into the environment before this runs. Malformed
// numeric, boolean or duration values are ignored.
//
//	PORT                  HTTP port (becomes ":PORT")
//	HTTP_ADDR             HTTP bind address, wins over PORT
//	GRPC_ADDR             gRPC health bind address
//	DATABASE_DSN          PostgreSQL DSN
//	JWT_SECRET            token signing secret
//	TOKEN_VALIDITY        token lifetime, e.g. "168h"
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//	OPENAI_API_KEY, OPENAI_BASE_URL, TRANSCRIPTION_MODEL, SUMMARY_MODEL
//	AI_REQUEST_TIMEOUT    e.g. "10m"
//	MAX_UPLOAD_BYTES      integer
//	CLEANUP_ORPHANS, SCOPE_RECORDS_TO_OWNER  booleans
//	LOG_BACKEND, LOG_FORMAT, LOG_LEVEL
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.TokenValidityDuration, "TOKEN_VALIDITY")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.OpenAIAPIKey, "OPENAI_API_KEY")
	envString(&config.OpenAIBaseURL, "OPENAI_BASE_URL")
	envString(&config.TranscriptionModel, "TRANSCRIPTION_MODEL")
	envString(&config.SummaryModel, "SUMMARY_MODEL")
	envDuration(&config.AIRequestTimeout, "AI_REQUEST_TIMEOUT")
	if v, ok := os.LookupEnv("MAX_UPLOAD_BYTES"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxUploadBytes = n
		}
	}
	envBool(&config.CleanupOrphans, "CLEANUP_ORPHANS")
	envBool(&config.ScopeRecordsToOwner, "SCOPE_RECORDS_TO_OWNER")
	envString(&config.LogBackend, "LOG_BACKEND")
	envString(&config.LogFormat, "LOG_FORMAT")
	envString(&config.LogLevel, "LOG_LEVEL")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func envBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
