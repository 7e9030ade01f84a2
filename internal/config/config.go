package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName      = "transcript-tui"
	EnvPrefix    = "TRANSCRIPT_TUI"
	SettingsFile = "settings.json"

	// HiddenNotesFile is the fixed storage location of the hidden-notes overlay,
	// relative to the config directory.
	HiddenNotesFile = "hidden-notes.json"
)

// Keys
const (
	KeyServerURL       = "server.url"
	KeyServerTimeout   = "server.timeout"
	KeyTransferTimeout = "server.transfer_timeout"
	KeyDownloadDir     = "download.dir"
	KeyChatProvider    = "chat.provider"
	KeyLogLevel        = "log.level"
	KeyLogFile         = "log.file"
)

// Settings holds the resolved application settings
type Settings struct {
	ConfigDir string

	// ServerURL is the base URL of the transcription service, without /api
	ServerURL string

	// Timeout applies to JSON calls; TransferTimeout to uploads, downloads and
	// exports, which can be large
	Timeout         time.Duration
	TransferTimeout time.Duration

	DownloadDir  string
	ChatProvider string
	LogLevel     string
	LogFile      string
}

// DefaultConfigDir returns ~/.config/transcript-tui (or the platform equivalent)
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, AppName)
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DefaultConfigDir(), "downloads")
	}
	return filepath.Join(home, "Downloads", AppName)
}

// SetDefaults registers defaults on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerURL, "http://localhost:5000")
	v.SetDefault(KeyServerTimeout, 30*time.Second)
	v.SetDefault(KeyTransferTimeout, 30*time.Minute)
	v.SetDefault(KeyDownloadDir, defaultDownloadDir())
	v.SetDefault(KeyChatProvider, "qwen")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
}

// New returns a viper instance wired to defaults, the environment and the
// settings file in configDir. The file is optional.
func New(configDir string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(filepath.Join(configDir, SettingsFile))
	v.SetConfigType("json")
	return v
}

// Load reads the settings file (if any) and resolves Settings. A missing file
// is not an error; a malformed one is.
func Load(v *viper.Viper, configDir string) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil && fileExists(v.ConfigFileUsed()) {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	s := &Settings{
		ConfigDir:       configDir,
		ServerURL:       strings.TrimRight(v.GetString(KeyServerURL), "/"),
		Timeout:         v.GetDuration(KeyServerTimeout),
		TransferTimeout: v.GetDuration(KeyTransferTimeout),
		DownloadDir:     v.GetString(KeyDownloadDir),
		ChatProvider:    v.GetString(KeyChatProvider),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFile:         v.GetString(KeyLogFile),
	}
	if s.LogFile == "" {
		s.LogFile = filepath.Join(configDir, AppName+".log")
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.TransferTimeout <= 0 {
		s.TransferTimeout = 30 * time.Minute
	}
	return s, nil
}

// HiddenNotesPath returns the overlay store location
func (s *Settings) HiddenNotesPath() string {
	return filepath.Join(s.ConfigDir, HiddenNotesFile)
}

// Save writes the user-facing keys back to the settings file
func Save(v *viper.Viper, configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(filepath.Join(configDir, SettingsFile)); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
