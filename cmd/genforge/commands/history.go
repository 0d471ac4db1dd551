package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyGenerated bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if historyGenerated {
			items := a.Chat.GeneratedItems()
			if outputJSON {
				return printJSON(out, items)
			}
			for _, it := range items {
				link := it.Message.VideoURL
				if link == "" {
					link = "(inline image)"
				}
				fmt.Fprintf(out, "%s  %q  %s\n", it.Message.CreatedAt.Local().Format("2006-01-02 15:04"), it.Prompt, link)
			}
			return nil
		}

		messages := a.Chat.History()
		if outputJSON {
			return printJSON(out, messages)
		}
		for _, m := range messages {
			fmt.Fprintf(out, "[%s] %s\n", m.Author, m.Text)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show simulated usage and the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		stats := a.Chat.Stats(cmd.Context())
		out := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(out, stats)
		}
		fmt.Fprintf(out, "API usage (simulated): $%s\n", stats.TotalCost)
		fmt.Fprintf(out, "  based on %d images and %d videos\n", stats.ImageGenerations, stats.VideoGenerations)
		fmt.Fprintf(out, "Provider:    %s\n", stats.Provider)
		fmt.Fprintf(out, "Image model: %s\n", stats.ImageModel)
		fmt.Fprintf(out, "Video model: %s\n", stats.VideoModel)
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyGenerated, "generated", false, "only list generated media with their prompts")
}
