package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"aaronromeo.com/inboxpilot/internal/config"
)

const defaultEnvFile = ".env"

var rootCmd = &cobra.Command{
	Use:           "inboxpilot",
	Short:         "inboxpilot serves a Gmail inbox over a session-backed HTTP API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (or set "+config.EnvConfigPath+")")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(mirrorCmd)
}

// loadConfig reads .env, then the YAML file, then INBOXPILOT_* overrides,
// and validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := loadEnvFile(); err != nil {
		return config.Config{}, err
	}

	cfgPath, err := resolveConfigPath(cmd)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Resolve(cfgPath)
	if err != nil {
		return config.Config{}, err
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveConfigPath returns the --config flag or INBOXPILOT_CONFIG. An empty
// result means defaults plus environment.
func resolveConfigPath(cmd *cobra.Command) (string, error) {
	cfgPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cfgPath) == "" {
		cfgPath = os.Getenv(config.EnvConfigPath)
	}
	cfgPath = strings.TrimSpace(cfgPath)
	if cfgPath == "" {
		return "", nil
	}
	if _, err := os.Stat(cfgPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file %s does not exist", cfgPath)
		}
		return "", err
	}
	return cfgPath, nil
}

func loadEnvFile() error {
	if _, err := os.Stat(defaultEnvFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(defaultEnvFile)
}
