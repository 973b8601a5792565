package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/userdash/internal/flagx"
)

var knownFlags = []string{
	"-d", "-m", "-n", "-e", "-k", "-i", "-tz", "-policy", "-log-level",
	"-s3-bucket", "-s3-endpoint", "-s3-region",
}

// parseFlags overlays cfg with command-line flags.
//
//	-d string          local SQLite database path
//	-m string          MongoDB connection URI
//	-n string          MongoDB database name
//	-e string          identity provider endpoint
//	-k string          identity provider API key
//	-i int             online check interval (seconds)
//	-tz string         dashboard time zone
//	-policy string     reconcile policy: best-effort or fail-fast
//	-log-level string  debug, info, warn or error
//	-s3-bucket, -s3-endpoint, -s3-region string  export target
//
// Arguments are filtered with flagx.FilterArgs so flags owned by other
// components do not interfere.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("userdash", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.MongoURI, "m", cfg.MongoURI, "MongoDB URI")
	fs.StringVar(&cfg.MongoDatabase, "n", cfg.MongoDatabase, "MongoDB database name")
	fs.StringVar(&cfg.IdentityEndpoint, "e", cfg.IdentityEndpoint, "identity provider endpoint")
	fs.StringVar(&cfg.IdentityAPIKey, "k", cfg.IdentityAPIKey, "identity provider API key")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.TimeZone, "tz", cfg.TimeZone, "dashboard time zone")
	fs.StringVar(&cfg.ReconcilePolicy, "policy", cfg.ReconcilePolicy, "reconcile policy")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", cfg.S3Bucket, "export bucket")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", cfg.S3Endpoint, "export endpoint")
	fs.StringVar(&cfg.S3Region, "s3-region", cfg.S3Region, "export region")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
