package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/userdash/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// parseEnv loads the dotenv file (-env, ".env" by default) into the process
// environment without overriding variables that are already set, then
// overlays cfg with USERDASH_* variables. A missing dotenv file is ignored.
func parseEnv(cfg *Config, args []string) error {
	path := flagx.EnvFilePath(args)
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}
