// Package telegram connects the command router to a Telegram bot through
// long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/command"
	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/mymmrac/telego"
)

// ErrTokenEmpty indicates that no bot token was configured.
var ErrTokenEmpty = errors.New("telegram token cannot be empty")

// Handler runs one chat command against a surface.
type Handler interface {
	Handle(ctx context.Context, msg command.Message, surface core.Surface) bool
}

// Channel feeds Telegram messages to a Handler. Each update is handled in
// its own goroutine.
type Channel struct {
	bot     *telego.Bot
	handler Handler
	masters []int64
	log     *logger.Logger

	inflight sync.WaitGroup
}

// New creates a Channel for the bot identified by token. masters lists the
// Telegram user ids allowed to run admin commands.
func New(token string, masters []int64, handler Handler, log *logger.Logger, opts ...telego.BotOption) (*Channel, error) {
	if token == "" {
		return nil, ErrTokenEmpty
	}

	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Channel{
		bot:     bot,
		handler: handler,
		masters: slices.Clone(masters),
		log:     log,
	}, nil
}

// Run polls for updates until ctx is done, then waits for in-flight commands.
func (c *Channel) Run(ctx context.Context) error {
	updates, err := c.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	c.log.Info("Telegram long polling started")

	for update := range updates {
		c.inflight.Add(1)

		go func() {
			defer c.inflight.Done()

			c.handleUpdate(context.WithoutCancel(ctx), update)
		}()
	}

	c.inflight.Wait()
	c.log.Info("Telegram long polling stopped")

	return nil
}

func (c *Channel) handleUpdate(ctx context.Context, update telego.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	surface := NewSurface(c.bot, msg.Chat.ID)

	handled := c.handler.Handle(ctx, command.Message{
		UserID:   strconv.FormatInt(msg.From.ID, 10),
		Text:     msg.Text,
		IsMaster: slices.Contains(c.masters, msg.From.ID),
	}, surface)
	if handled {
		c.log.Info("Handled command from telegram user %d in chat %d", msg.From.ID, msg.Chat.ID)
	}
}
