package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "USERDASH"

// Config holds runtime settings for the UserDash CLI.
type Config struct {
	DatabasePath string `envconfig:"DB_PATH" validate:"required"`

	MongoURI        string `envconfig:"MONGO_URI" validate:"required"`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" validate:"required"`
	UsersCollection string `envconfig:"USERS_COLLECTION" validate:"required"`

	IdentityEndpoint string `envconfig:"IDENTITY_ENDPOINT" validate:"required,url"`
	IdentityAPIKey   string `envconfig:"IDENTITY_API_KEY"`

	OnlineCheckInterval time.Duration `envconfig:"ONLINE_CHECK_INTERVAL" validate:"gt=0"`

	// TimeZone is an IANA name, "UTC" or "Local"; used for the dashboard.
	TimeZone        string `envconfig:"TIME_ZONE"`
	ReconcilePolicy string `envconfig:"RECONCILE_POLICY" validate:"oneof=best-effort fail-fast"`
	LogLevel        string `envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`

	S3Region    string `envconfig:"S3_REGION"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
}

// LoadDefaults populates c with defaults suitable for a local setup.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "userdash.db"
	c.MongoURI = "mongodb://127.0.0.1:27017"
	c.MongoDatabase = "userdash"
	c.UsersCollection = "users"
	c.IdentityEndpoint = "https://identitytoolkit.googleapis.com"
	c.OnlineCheckInterval = 3 * time.Second
	c.TimeZone = "Local"
	c.ReconcilePolicy = "best-effort"
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// LoadConfig builds a Config from os.Args. See Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load applies defaults, then the JSON file named by -c/-config, then the
// dotenv file and USERDASH_* environment variables, then flags from args.
// Later sources take precedence. The result is validated.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
