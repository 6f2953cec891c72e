package config

import (
	"time"

	"github.com/dmitrijs2005/postplanner/internal/configx"
)

// EnvPrefix prefixes every environment variable read by the server.
const EnvPrefix = "POSTPLANNER_"

// parseEnv overlays POSTPLANNER_* variables onto config after loading a
// .env file from the working directory, if present.
func parseEnv(config *Config) {
	if err := configx.LoadDotEnv(); err != nil {
		panic(err)
	}

	strs := map[string]*string{
		"GRPC_ADDR":             &config.EndpointAddrGRPC,
		"DATABASE_DSN":          &config.DatabaseDSN,
		"SECRET_KEY":            &config.SecretKey,
		"LOG_LEVEL":             &config.LogLevel,
		"MEDIA_BACKEND":         &config.MediaBackend,
		"MEDIA_BASE_URL":        &config.MediaBaseURL,
		"S3_ROOT_USER":          &config.S3RootUser,
		"S3_ROOT_PASSWORD":      &config.S3RootPassword,
		"S3_BUCKET":             &config.S3Bucket,
		"S3_REGION":             &config.S3Region,
		"S3_BASE_ENDPOINT":      &config.S3BaseEndpoint,
		"GCS_BUCKET":            &config.GCSBucket,
		"GCS_CREDENTIALS_FILE":  &config.GCSCredentialsFile,
		"YOUTUBE_CLIENT_ID":     &config.YouTubeClientID,
		"YOUTUBE_CLIENT_SECRET": &config.YouTubeClientSecret,
		"YOUTUBE_REDIRECT_URL":  &config.YouTubeRedirectURL,
		"CHANGE_MODE":           &config.ChangeMode,
		"CLEANUP_SCHEDULE":      &config.CleanupSchedule,
	}
	for key, dst := range strs {
		configx.String(EnvPrefix+key, dst)
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_VALIDITY":  &config.AccessTokenValidityDuration,
		"REFRESH_TOKEN_VALIDITY": &config.RefreshTokenValidityDuration,
		"UPLOAD_URL_VALIDITY":    &config.UploadURLValidity,
		"STATE_TOKEN_VALIDITY":   &config.StateTokenValidity,
	}
	for key, dst := range durations {
		if err := configx.Duration(EnvPrefix+key, dst); err != nil {
			panic(err)
		}
	}
}
