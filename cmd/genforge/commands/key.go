package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the selected Gemini API key",
}

var keySetCmd = &cobra.Command{
	Use:   "set <api-key>",
	Short: "Select the Gemini API key used for generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Credentials.SetGeminiAPIKey(cmd.Context(), args[0]); err != nil {
			return err
		}
		printInfo(cmd, "API key selected: %s", maskKey(args[0]))
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the selected Gemini API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Credentials.ClearGeminiAPIKey(cmd.Context()); err != nil {
			return err
		}
		a.Gate.Invalidate()
		printInfo(cmd, "API key removed")
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a usable key is available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		selected, err := a.Credentials.GeminiAPIKey(cmd.Context())
		if err != nil {
			return err
		}
		active, err := a.Resolver.APIKey(cmd.Context())
		if err != nil {
			return err
		}

		source := "none"
		switch {
		case selected != "":
			source = "selected"
		case active != "" && active == a.Library.Settings(cmd.Context()).APIKey:
			source = "settings"
		case active != "":
			source = "environment"
		}

		out := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(out, map[string]any{"available": active != "", "source": source})
		}
		if active == "" {
			fmt.Fprintln(out, "No API key available. Run 'genforge key set <api-key>'.")
			return nil
		}
		fmt.Fprintf(out, "API key %s (from %s)\n", maskKey(active), source)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyClearCmd)
	keyCmd.AddCommand(keyStatusCmd)
}
