package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bprateek14/video-generation-platform/internal/app"
	"github.com/bprateek14/video-generation-platform/internal/infra"
)

var (
	outputJSON bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "genforge",
	Short: "Generate images and videos from text prompts",
	Long: `genforge - generate images (Imagen) and videos (Veo) from text prompts.

Every generation is recorded in the same conversation history the API server
serves, so the history and stats commands reflect both.

Examples:
  # Select a key once
  genforge key set AIza...

  # Generate media
  genforge image "a red cube on a marble table" -o cube.jpg
  genforge video "ocean waves at dusk" -o waves.mp4`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Interrupts cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging on stderr")

	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(keyCmd)
}

// openApp loads configuration and builds the service graph. The terminal acts
// as the key selector.
func openApp(ctx context.Context, cmd *cobra.Command) (*app.App, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	env := "cli"
	if verbose {
		env = "development"
	}
	logger := infra.NewLogger(env)

	var built *app.App
	selector := &terminalSelector{
		in:  cmd.InOrStdin(),
		out: cmd.ErrOrStderr(),
		store: func(ctx context.Context, key string) error {
			return built.Credentials.SetGeminiAPIKey(ctx, key)
		},
	}
	built, err = app.Build(ctx, cfg, &logger, app.Hooks{Selector: selector.Select})
	if err != nil {
		return nil, err
	}
	return built, nil
}

// terminalSelector asks for a key on the terminal and stores it.
type terminalSelector struct {
	in    io.Reader
	out   io.Writer
	store func(ctx context.Context, key string) error
}

func (t *terminalSelector) Select(ctx context.Context) error {
	fmt.Fprint(t.out, "No API key selected. Enter a Gemini API key: ")
	line, err := bufio.NewReader(t.in).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read api key: %w", err)
	}
	key := strings.TrimSpace(line)
	if key == "" {
		// Leave the outcome to the remote service, as a dismissed dialog would.
		return nil
	}
	return t.store(ctx, key)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printInfo(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
