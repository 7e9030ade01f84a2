package main

import (
	"fmt"
	"os"
	"time"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/config"
	"github.com/csams/transcript-tui/internal/download"
	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/overlay"
	"github.com/csams/transcript-tui/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Terminal client for the podcast transcription service",
	Long: `transcript-tui lists the podcasts and documentaries known to a
transcription service and lets you submit new ones, read transcripts and
notes, rename speakers, export transcripts and chat with an AI assistant
about an episode.

Settings are read from settings.json in the config directory, from
TRANSCRIPT_TUI_* environment variables and from the flags below.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", config.DefaultConfigDir(), "directory holding settings.json and local state")
	flags.String("server", "", "base URL of the transcription service")
	flags.Duration("timeout", 0, "timeout for API calls")
	flags.String("download-dir", "", "where downloads and exports are saved")
	flags.String("provider", "", fmt.Sprintf("default AI provider (%s or %s)", chat.ProviderQwen, chat.ProviderDeepSeek))
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-file", "", "log file (default <config-dir>/transcript-tui.log)")
}

// bindFlags makes flags override the settings file and environment
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	bindings := map[string]string{
		"server":       config.KeyServerURL,
		"timeout":      config.KeyServerTimeout,
		"download-dir": config.KeyDownloadDir,
		"provider":     config.KeyChatProvider,
		"log-level":    config.KeyLogLevel,
		"log-file":     config.KeyLogFile,
	}
	for flag, key := range bindings {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	return nil
}

// loadSettings reads the settings file with flags applied on top
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	v := config.New(configDir)
	if err := bindFlags(cmd, v); err != nil {
		return nil, err
	}
	return config.Load(v, configDir)
}

func run(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if !chat.ValidProvider(settings.ChatProvider) {
		return fmt.Errorf("unknown AI provider %q", settings.ChatProvider)
	}

	// the terminal belongs to the UI, so logs only go to the file
	logFile, err := logging.OpenLogFile(settings.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logging.Setup(settings.LogLevel, logFile)

	logging.Info().
		Str("server", settings.ServerURL).
		Str("config_dir", settings.ConfigDir).
		Str("download_dir", settings.DownloadDir).
		Msg("starting transcript-tui")
	started := time.Now()
	defer func() {
		logging.Info().Dur("uptime", time.Since(started)).Msg("exiting")
	}()

	app := ui.NewApp(ui.Options{
		Backend:  api.NewClient(settings.ServerURL, settings.Timeout, settings.TransferTimeout),
		Overlay:  overlay.NewStore(settings.HiddenNotesPath()),
		Saver:    download.NewSaver(settings.DownloadDir),
		Settings: settings,
	})
	return app.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
