package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskflow/internal/config"
	"github.com/Joseda-hg/taskflow/internal/logger"
)

var Version = "dev"

type rootFlags struct {
	configPath string
	backendURL string
	logLevel   string
}

func main() {
	flags := &rootFlags{}
	rootCmd := &cobra.Command{
		Use:           "taskflow",
		Short:         "Personal task tracker with a web board and a terminal board",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&flags.backendURL, "backend-url", "", "record store DSN (sqlite path or postgres:// URL)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level")

	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(tuiCmd(flags))
	rootCmd.AddCommand(migrateCmd(flags))
	rootCmd.AddCommand(configCmd(flags))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// loadConfig applies defaults, the YAML file, the environment and then the
// command-line flags, and sets up logging.
func loadConfig(flags *rootFlags) (config.Config, string, error) {
	path, err := resolveConfigPath(flags.configPath)
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	if flags.backendURL != "" {
		cfg.BackendURL = flags.backendURL
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		return config.Config{}, "", err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}
	if err := ensureSQLiteDir(cfg.BackendURL); err != nil {
		return config.Config{}, "", err
	}

	log.WithField("config", path).Debug("configuration loaded")
	return cfg, path, nil
}

// sessionSecret returns the configured signing key or a random one for this
// process. Sessions signed with a random key end when the process exits.
func sessionSecret(cfg config.Config) string {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret
	}
	log.Warn("session_secret is not set, using a per-process key")
	return rand.Text()
}

func ensureSQLiteDir(dsn string) error {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	return config.EnsureDir(filepath.Clean(path))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
