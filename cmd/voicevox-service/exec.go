package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/command"
	"github.com/book-expert/voicevox-service/internal/config"
	"github.com/book-expert/voicevox-service/internal/kvstore"
	"github.com/spf13/cobra"
)

// ErrNotACommand indicates text that no command rule matched.
var ErrNotACommand = errors.New("not a voicevox command")

func execCmd() *cobra.Command {
	var (
		userID   string
		isMaster bool
	)

	cmd := &cobra.Command{
		Use:   "exec [command text]",
		Short: "Run one command against an in-memory preference store and print the replies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			defer func() { _ = log.Close() }()

			return execOne(cmd.Context(), cfg, log, cmd.OutOrStdout(), command.Message{
				UserID:   userID,
				Text:     strings.Join(args, " "),
				IsMaster: isMaster,
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "console", "identity the preferences are stored under")
	cmd.Flags().BoolVar(&isMaster, "master", false, "allow admin commands")

	return cmd
}

func execOne(ctx context.Context, cfg *config.Config, log *logger.Logger, out io.Writer, msg command.Message) error {
	router, err := buildRouter(cfg, kvstore.NewMemory(), log)
	if err != nil {
		return err
	}

	if !router.Handle(ctx, msg, &consoleSurface{out: out}) {
		return fmt.Errorf("%w: %q", ErrNotACommand, msg.Text)
	}

	return nil
}

// consoleSurface prints replies and audio locators.
type consoleSurface struct {
	out io.Writer
}

func (s *consoleSurface) Reply(_ context.Context, text string) error {
	_, err := fmt.Fprintln(s.out, text)

	return err
}

func (s *consoleSurface) UploadRecord(_ context.Context, source string) error {
	_, err := fmt.Fprintf(s.out, "[voice] %s\n", source)

	return err
}

func (s *consoleSurface) AttachRecord(_ context.Context, locator string) error {
	_, err := fmt.Fprintf(s.out, "[audio] %s\n", locator)

	return err
}
