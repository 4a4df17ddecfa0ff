package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskflow/internal/config"
)

func configCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with a local SQLite store and fresh keys",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveConfigPath(flags.configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			cfg := config.Default()
			cfg.BackendURL = filepath.Join(filepath.Dir(path), "taskflow.db")
			if flags.backendURL != "" {
				cfg.BackendURL = flags.backendURL
			}
			cfg.AnonKey = uuid.NewString()
			cfg.SessionSecret = rand.Text()
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
