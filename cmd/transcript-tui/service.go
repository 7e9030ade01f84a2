package main

import (
	"fmt"
	"strings"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/config"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete podcasts with their transcripts and notes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var serverInfoCmd = &cobra.Command{
	Use:   "server-info",
	Short: "Show the AI settings of the transcription service",
	Args:  cobra.NoArgs,
	RunE:  runServerInfo,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(serverInfoCmd)
}

// serviceClient builds an API client from the settings file and flags
func serviceClient(cmd *cobra.Command) (*api.Client, *config.Settings, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}
	return api.NewClient(settings.ServerURL, settings.Timeout, settings.TransferTimeout), settings, nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, _, err := serviceClient(cmd)
	if err != nil {
		return err
	}
	deleted, err := client.DeletePodcasts(cmd.Context(), args)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d of %d podcasts\n", deleted, len(args))
	return nil
}

func runServerInfo(cmd *cobra.Command, args []string) error {
	client, settings, err := serviceClient(cmd)
	if err != nil {
		return err
	}
	info, err := client.GetSettings(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server:           %s\n", settings.ServerURL)
	fmt.Fprintf(out, "AI providers:     %s\n", strings.Join(info.AIProviders, ", "))
	fmt.Fprintf(out, "Default provider: %s\n", info.DefaultProvider)
	fmt.Fprintf(out, "Transcription:    %s\n", info.WhisperProvider)
	if info.DefaultProvider != "" && !chat.ValidProvider(info.DefaultProvider) {
		fmt.Fprintf(out, "Chat here uses %s or %s; the service default %q is not available.\n",
			chat.ProviderQwen, chat.ProviderDeepSeek, info.DefaultProvider)
	}
	return nil
}
