package config

import (
	"time"

	"github.com/dmitrijs2005/postplanner/internal/configx"
	"github.com/dmitrijs2005/postplanner/internal/flagx"
	"github.com/dmitrijs2005/postplanner/internal/timex"
)

// FileConfig is the on-disk shape of the server configuration. Durations
// accept strings such as "15m" as well as integer nanoseconds. Empty fields
// leave the current value untouched.
type FileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                    string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	MediaBackend                 string         `json:"media_backend" yaml:"media_backend"`
	UploadURLValidity            timex.Duration `json:"upload_url_validity" yaml:"upload_url_validity"`
	MediaBaseURL                 string         `json:"media_base_url" yaml:"media_base_url"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	GCSBucket                    string         `json:"gcs_bucket" yaml:"gcs_bucket"`
	GCSCredentialsFile           string         `json:"gcs_credentials_file" yaml:"gcs_credentials_file"`
	YouTubeClientID              string         `json:"youtube_client_id" yaml:"youtube_client_id"`
	YouTubeClientSecret          string         `json:"youtube_client_secret" yaml:"youtube_client_secret"`
	YouTubeRedirectURL           string         `json:"youtube_redirect_url" yaml:"youtube_redirect_url"`
	StateTokenValidity           timex.Duration `json:"state_token_validity" yaml:"state_token_validity"`
	ChangeMode                   string         `json:"change_mode" yaml:"change_mode"`
	CleanupSchedule              string         `json:"cleanup_schedule" yaml:"cleanup_schedule"`
}

// parseFile overlays the file named by -c/-config onto config. Without the
// flag nothing is loaded; an unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	c := &FileConfig{}
	if err := configx.DecodeFile(path, c); err != nil {
		panic(err)
	}
	c.apply(config)
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.MediaBackend, c.MediaBackend)
	setDuration(&config.UploadURLValidity, c.UploadURLValidity)
	setString(&config.MediaBaseURL, c.MediaBaseURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.GCSBucket, c.GCSBucket)
	setString(&config.GCSCredentialsFile, c.GCSCredentialsFile)
	setString(&config.YouTubeClientID, c.YouTubeClientID)
	setString(&config.YouTubeClientSecret, c.YouTubeClientSecret)
	setString(&config.YouTubeRedirectURL, c.YouTubeRedirectURL)
	setDuration(&config.StateTokenValidity, c.StateTokenValidity)
	setString(&config.ChangeMode, c.ChangeMode)
	setString(&config.CleanupSchedule, c.CleanupSchedule)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
