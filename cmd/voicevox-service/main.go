// main package for the voicevox-service
package main

import (
	"fmt"
	"os"

	"github.com/book-expert/logger"
	"github.com/spf13/cobra"
)

const (
	bootstrapLogFile = "voicevox-service-bootstrap.log"
	serviceLogFile   = "voicevox-service.log"
)

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger in %s: %w", logPath, err)
	}

	return log, nil
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "voicevox-service",
		Short:         "VoiceVox text-to-speech command service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(execCmd())

	return cmd
}

func main() {
	err := rootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
