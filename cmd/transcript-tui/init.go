package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file",
	Long: `Write settings.json into the config directory, using the defaults
overridden by any flags given, e.g.

  transcript-tui init --server http://media-box:5000 --provider deepseek

An existing file is kept unless --force is given.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "overwrite an existing settings file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(configDir, config.SettingsFile)
	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	}

	v := config.New(configDir)
	if err := bindFlags(cmd, v); err != nil {
		return err
	}
	if !chat.ValidProvider(v.GetString(config.KeyChatProvider)) {
		return fmt.Errorf("unknown AI provider %q", v.GetString(config.KeyChatProvider))
	}
	if err := config.Save(v, configDir); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
