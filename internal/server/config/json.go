package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filekeeper/internal/flagx"
	"github.com/dmitrijs2005/filekeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept strings such
// as "15m" or integer nanoseconds. Absent keys leave the current value
// untouched, so booleans are pointers.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	PublicBaseURL           string         `json:"public_base_url"`
	DatabaseDSN             string         `json:"database_dsn"`
	RegistryBackend         string         `json:"registry_backend"`
	StorageBackend          string         `json:"storage_backend"`
	StorageRoot             string         `json:"storage_root"`
	TempURLValidityDuration timex.Duration `json:"temp_url_validity_duration"`
	MaxFileSize             int64          `json:"max_file_size"`
	BatchConcurrency        int            `json:"batch_concurrency"`
	JanitorSchedule         *string        `json:"janitor_schedule"`
	LogBackend              string         `json:"log_backend"`
	TracingEnabled          *bool          `json:"tracing_enabled"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	S3PresignRedirect       *bool          `json:"s3_presign_redirect"`
	CORSAllowedOrigins      []string       `json:"cors_allowed_origins"`
}

// parseJson loads the file named by -c or -config into config. Without
// either flag nothing happens. Unreadable files and invalid JSON panic.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RegistryBackend, c.RegistryBackend)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.StorageRoot, c.StorageRoot)
	if c.TempURLValidityDuration.Duration > 0 {
		config.TempURLValidityDuration = c.TempURLValidityDuration.Duration
	}
	if c.MaxFileSize > 0 {
		config.MaxFileSize = c.MaxFileSize
	}
	if c.BatchConcurrency > 0 {
		config.BatchConcurrency = c.BatchConcurrency
	}
	if c.JanitorSchedule != nil {
		config.JanitorSchedule = *c.JanitorSchedule
	}
	setString(&config.LogBackend, c.LogBackend)
	if c.TracingEnabled != nil {
		config.TracingEnabled = *c.TracingEnabled
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.S3PresignRedirect != nil {
		config.S3PresignRedirect = *c.S3PresignRedirect
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
