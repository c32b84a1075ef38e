package telegram

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// telegramMaxMessageLen is the safe limit for Telegram messages.
const telegramMaxMessageLen = 4000

// Surface replies into one Telegram chat.
type Surface struct {
	bot    *telego.Bot
	chatID int64
}

// NewSurface creates a Surface for chatID.
func NewSurface(bot *telego.Bot, chatID int64) *Surface {
	return &Surface{bot: bot, chatID: chatID}
}

// Reply sends text as a message.
func (s *Surface) Reply(ctx context.Context, text string) error {
	_, err := s.bot.SendMessage(ctx, tu.Message(tu.ID(s.chatID), truncate(text)))
	if err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", s.chatID, err)
	}

	return nil
}

// UploadRecord sends a voice message from a URL or a local file.
func (s *Surface) UploadRecord(ctx context.Context, source string) error {
	if isURL(source) {
		_, err := s.bot.SendVoice(ctx, tu.Voice(tu.ID(s.chatID), tu.FileFromURL(source)))
		if err != nil {
			return fmt.Errorf("failed to send voice by url to chat %d: %w", s.chatID, err)
		}

		return nil
	}

	file, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open audio file '%s': %w", source, err)
	}
	defer file.Close()

	_, err = s.bot.SendVoice(ctx, tu.Voice(tu.ID(s.chatID), tu.File(file)))
	if err != nil {
		return fmt.Errorf("failed to upload voice to chat %d: %w", s.chatID, err)
	}

	return nil
}

// AttachRecord sends the audio at locator as an audio attachment.
func (s *Surface) AttachRecord(ctx context.Context, locator string) error {
	_, err := s.bot.SendAudio(ctx, tu.Audio(tu.ID(s.chatID), tu.FileFromURL(locator)))
	if err != nil {
		return fmt.Errorf("failed to send audio to chat %d: %w", s.chatID, err)
	}

	return nil
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= telegramMaxMessageLen {
		return text
	}

	return string(runes[:telegramMaxMessageLen])
}

func isURL(source string) bool {
	parsed, err := url.Parse(source)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
