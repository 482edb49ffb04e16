package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/tickfewer/internal/config"
)

// configSource says where the upstream configuration comes from.
type configSource struct {
	path       string
	envFile    string
	timeout    time.Duration
	timeoutSet bool
}

func addConfigFlags(cmd *cobra.Command, src *configSource) {
	cmd.Flags().StringVar(&src.path, "config", "", "YAML configuration file. Can also use "+config.EnvConfigFile+" env var.")
	cmd.Flags().StringVar(&src.envFile, "env-file", ".env", "File with KEY=value lines loaded into the environment; ignored when missing")
	cmd.Flags().DurationVar(&src.timeout, "timeout", config.DefaultTimeout, "Timeout of one upstream request")
}

// loadConfig reads the configuration; flags override every other source.
func loadConfig(src configSource) (*config.Config, error) {
	cfg, err := config.Load(src.path, src.envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if src.timeoutSet {
		cfg.Timeout = config.Duration(src.timeout)
	}
	return cfg, nil
}
