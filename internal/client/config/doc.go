// Package config loads runtime configuration for the UserDash CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. A dotenv file (-env, default ".env") and USERDASH_* environment
//     variables. Variables already set in the environment win over the file.
//  4. Command-line flags, which override everything before them.
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "database_path": "userdash.db",
//	  "mongo_uri": "mongodb://127.0.0.1:27017",
//	  "online_check_interval": "3s",
//	  "time_zone": "Europe/Riga",
//	  "reconcile_policy": "best-effort"
//	}
//
// # Environment
//
// Variable names are USERDASH_ plus the envconfig tag of the field, e.g.
// USERDASH_DB_PATH, USERDASH_MONGO_URI, USERDASH_S3_BUCKET.
//
// Primary API
//
//   - type Config                       holds all settings
//   - func LoadConfig() (*Config, error) applies every source to os.Args
//   - func Load(args) (*Config, error)   same, for explicit arguments
package config
