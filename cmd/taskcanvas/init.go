package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/metalagman/taskcanvas/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and a default config",
		Long:  "Create the data directory next to the config file and write a default config.yaml. The data directory holds the database and the process lock.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				path = config.DefaultPath
			}
			dataDir := filepath.Dir(path)
			log.Info().Str("dir", dataDir).Msg("creating data directory")
			if err := os.MkdirAll(filepath.Join(dataDir, "locks"), 0o755); err != nil {
				return fmt.Errorf("create locks dir: %w", err)
			}

			if _, err := os.Stat(path); err == nil && !force {
				log.Info().Str("path", path).Msg("config already exists, skipping")
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			} else {
				cfg := config.Default()
				cfg.DataDir = dataDir
				data, err := config.MarshalYAML(cfg)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write default config: %w", err)
				}
				log.Info().Str("path", path).Msg("installed default config")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "taskcanvas initialized successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
