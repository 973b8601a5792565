package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/userdash/internal/flagx"
	"github.com/dmitrijs2005/userdash/internal/timex"
)

// JsonConfig is a DTO used only for JSON unmarshalling. Intervals use
// timex.Duration, so "3s" and integer nanoseconds are both accepted.
type JsonConfig struct {
	DatabasePath        string         `json:"database_path"`
	MongoURI            string         `json:"mongo_uri"`
	MongoDatabase       string         `json:"mongo_database"`
	UsersCollection     string         `json:"users_collection"`
	IdentityEndpoint    string         `json:"identity_endpoint"`
	IdentityAPIKey      string         `json:"identity_api_key"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	TimeZone            string         `json:"time_zone"`
	ReconcilePolicy     string         `json:"reconcile_policy"`
	LogLevel            string         `json:"log_level"`
	S3Region            string         `json:"s3_region"`
	S3Endpoint          string         `json:"s3_endpoint"`
	S3Bucket            string         `json:"s3_bucket"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
}

// parseJson overlays cfg with the non-empty values of the JSON file given by
// -c or -config. Without such a flag it does nothing.
func parseJson(cfg *Config, args []string) error {
	path := flagx.JsonConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.MongoURI, jc.MongoURI)
	setString(&cfg.MongoDatabase, jc.MongoDatabase)
	setString(&cfg.UsersCollection, jc.UsersCollection)
	setString(&cfg.IdentityEndpoint, jc.IdentityEndpoint)
	setString(&cfg.IdentityAPIKey, jc.IdentityAPIKey)
	setString(&cfg.TimeZone, jc.TimeZone)
	setString(&cfg.ReconcilePolicy, jc.ReconcilePolicy)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
