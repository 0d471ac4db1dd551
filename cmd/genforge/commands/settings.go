package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bprateek14/video-generation-platform/internal/library"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change provider and model settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return printSettings(cmd, a.Library.Settings(cmd.Context()))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update settings; unset flags keep their current value",
	Long: `Update settings. Providers: Google, OpenAI, Anthropic, Stability AI,
Replicate, Custom Endpoint. Only Google is used for generation.

Examples:
  genforge settings set --video-model veo-3.1-generate-preview
  genforge settings set --provider "Custom Endpoint" --endpoint https://gen.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		s := a.Library.Settings(cmd.Context())
		flags := cmd.Flags()
		if flags.Changed("provider") {
			v, _ := flags.GetString("provider")
			s.Provider = library.Provider(v)
		}
		if flags.Changed("api-key") {
			s.APIKey, _ = flags.GetString("api-key")
		}
		if flags.Changed("image-model") {
			s.ImageModel, _ = flags.GetString("image-model")
		}
		if flags.Changed("video-model") {
			s.VideoModel, _ = flags.GetString("video-model")
		}
		if flags.Changed("endpoint") {
			s.CustomEndpoint, _ = flags.GetString("endpoint")
		}

		saved, err := a.Library.SaveSettings(cmd.Context(), s)
		if err != nil {
			return err
		}
		return printSettings(cmd, saved)
	},
}

func init() {
	f := settingsSetCmd.Flags()
	f.String("provider", "", "model provider")
	f.String("api-key", "", "provider API key")
	f.String("image-model", "", "image model identifier")
	f.String("video-model", "", "video model identifier")
	f.String("endpoint", "", "custom endpoint URL")
	settingsCmd.AddCommand(settingsSetCmd)
}

func printSettings(cmd *cobra.Command, s library.Settings) error {
	out := cmd.OutOrStdout()
	if outputJSON {
		s.APIKey = maskKey(s.APIKey)
		return printJSON(out, s)
	}
	fmt.Fprintf(out, "Provider:        %s\n", s.Provider)
	fmt.Fprintf(out, "API key:         %s\n", maskKey(s.APIKey))
	fmt.Fprintf(out, "Image model:     %s\n", s.ImageModel)
	fmt.Fprintf(out, "Video model:     %s\n", s.VideoModel)
	if s.CustomEndpoint != "" {
		fmt.Fprintf(out, "Custom endpoint: %s\n", s.CustomEndpoint)
	}
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
