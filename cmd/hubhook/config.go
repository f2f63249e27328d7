package main

import (
	"fmt"
	"strings"

	"hubhook/internal/config"
	"hubhook/pkg/fileutil"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// loadConfig resolves configuration from defaults, the config file, the
// environment and the flags the user set on cmd, in that order. Variables
// from the env file fill in only what the process environment lacks.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	if envFile != "" && fileutil.FileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := config.NewConfig()

	path := configFile
	if path == "" {
		path = fileutil.SearchPathsOptional(fileutil.DefaultConfigPaths(config.ConfigFileName))
	}
	if path != "" {
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, path, err
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, path, fmt.Errorf("loading environment: %w", err)
	}

	if err := cfg.SetFromFlags(changedFlags(cmd)); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// changedFlags collects the flags explicitly set on the command line
func changedFlags(cmd *cobra.Command) map[string]string {
	values := map[string]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			values[f.Name] = strings.Join(sv.GetSlice(), ",")
			return
		}
		values[f.Name] = f.Value.String()
	})
	return values
}
