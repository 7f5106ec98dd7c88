package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/medimate/internal/flagx"
	"github.com/dmitrijs2005/medimate/internal/timex"
)

// JsonConfig mirrors Config for JSON decoding. Every field is a pointer so
// that keys missing from the file leave the current value untouched, and
// durations accept both "10m" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	BcryptCost            *int            `json:"bcrypt_cost"`
	S3RootUser            *string         `json:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
	OpenAIAPIKey          *string         `json:"openai_api_key"`
	OpenAIBaseURL         *string         `json:"openai_base_url"`
	TranscriptionModel    *string         `json:"transcription_model"`
	SummaryModel          *string         `json:"summary_model"`
	AIRequestTimeout      *timex.Duration `json:"ai_request_timeout"`
	MaxUploadBytes        *int64          `json:"max_upload_bytes"`
	CleanupOrphans        *bool           `json:"cleanup_orphans"`
	ScopeRecordsToOwner   *bool           `json:"scope_records_to_owner"`
	LogBackend            *string         `json:"log_backend"`
	LogFormat             *string         `json:"log_format"`
	LogLevel              *string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c/-config. Nothing
// happens when no file is given. An unreadable file or invalid JSON panics,
// since the server cannot run with a half-applied configuration.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.BcryptCost != nil {
		config.BcryptCost = *c.BcryptCost
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.OpenAIAPIKey, c.OpenAIAPIKey)
	setString(&config.OpenAIBaseURL, c.OpenAIBaseURL)
	setString(&config.TranscriptionModel, c.TranscriptionModel)
	setString(&config.SummaryModel, c.SummaryModel)
	if c.AIRequestTimeout != nil {
		config.AIRequestTimeout = c.AIRequestTimeout.Duration
	}
	if c.MaxUploadBytes != nil {
		config.MaxUploadBytes = *c.MaxUploadBytes
	}
	if c.CleanupOrphans != nil {
		config.CleanupOrphans = *c.CleanupOrphans
	}
	if c.ScopeRecordsToOwner != nil {
		config.ScopeRecordsToOwner = *c.ScopeRecordsToOwner
	}
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
