package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bprateek14/video-generation-platform/internal/generation"
)

var outputFile string

var imageCmd = &cobra.Command{
	Use:   "image <prompt>",
	Short: "Generate an image",
	Long: `Generate a 1:1 JPEG image from a prompt and save it to a file.

Examples:
  genforge image "a red cube"
  genforge image "a red cube" -o cube.jpg`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGeneration(cmd, generation.KindImage, strings.Join(args, " "))
	},
}

var videoCmd = &cobra.Command{
	Use:   "video <prompt>",
	Short: "Generate a video",
	Long: `Generate a 720p 16:9 video from a prompt and save it to a file.

Video generation takes several minutes. Progress is reported on stderr.

Examples:
  genforge video "ocean waves"
  genforge video "ocean waves" -o waves.mp4`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGeneration(cmd, generation.KindVideo, strings.Join(args, " "))
	},
}

func init() {
	imageCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: image-<timestamp>.jpg)")
	videoCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: video-<timestamp>.mp4)")
}

func runGeneration(cmd *cobra.Command, kind generation.Kind, prompt string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Chat.Run(ctx, kind, prompt, func(status string) {
		printInfo(cmd, "%s", status)
	})
	if err != nil {
		return err
	}

	path := outputFile
	if path == "" {
		ext := "jpg"
		if kind == generation.KindVideo {
			ext = "mp4"
		}
		path = fmt.Sprintf("%s-%d.%s", kind, time.Now().Unix(), ext)
	}

	var size int64
	switch kind {
	case generation.KindImage:
		if err := os.WriteFile(path, res.Image.Data, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		size = int64(len(res.Image.Data))
	case generation.KindVideo:
		size, err = copyVideo(ctx, res.Video, path)
		if err != nil {
			return err
		}
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{"kind": kind, "file": path, "bytes": size})
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func copyVideo(ctx context.Context, v *generation.Video, path string) (int64, error) {
	rc, err := v.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("open video: %w", err)
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	n, err := io.Copy(f, rc)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write video: %w", err)
	}
	return n, nil
}
