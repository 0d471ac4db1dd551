// Package main provides the genforge CLI.
//
// Usage:
//
//	genforge [flags] <command> [args]
//
// Commands:
//
//	image     - Generate an image from a prompt
//	video     - Generate a video from a prompt
//	history   - Show the conversation history
//	stats     - Show simulated usage and the active configuration
//	settings  - Show or change provider and model settings
//	key       - Manage the selected Gemini API key
//
// Configuration is read from the environment and an optional .env file, the
// same way the API server reads it.
package main

import (
	"fmt"
	"os"

	"github.com/bprateek14/video-generation-platform/cmd/genforge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
