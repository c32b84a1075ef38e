package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/book-expert/voicevox-service/internal/prefs"
	"github.com/book-expert/voicevox-service/internal/synthesis"
)

func (r *Router) handleSpeak(ctx context.Context, c call) {
	r.speak(ctx, c, false)
}

func (r *Router) handleChineseSpeak(ctx context.Context, c call) {
	r.speak(ctx, c, true)
}

// parameters merges the stored record of identity with the configured defaults.
func (r *Router) parameters(ctx context.Context, identity string) prefs.Parameters {
	return prefs.Resolve(r.Prefs.Get(ctx, identity), r.Settings.Settings().Defaults())
}

// speak resolves the effective parameters, synthesizes c.arg and delivers the
// audio. A leading token naming a speaker overrides the preferred speaker
// when at least one more token follows.
func (r *Router) speak(ctx context.Context, c call, chinese bool) {
	content := c.arg
	if content == "" {
		r.reply(ctx, c, replyUsage, r.prefix)

		return
	}

	settings := r.Settings.Settings()
	params := r.parameters(ctx, c.msg.UserID)

	tokens := strings.Fields(content)
	if len(tokens) >= 2 {
		if id, found := r.Speakers.Resolve(tokens[0]); found {
			params.Speaker = id
			content = strings.Join(tokens[1:], " ")
		}
	}

	if settings.APIKey == "" {
		r.reply(ctx, c, replyMissingAPIKey, r.prefix)

		return
	}

	if chinese {
		content = r.Transliterator.Convert(ctx, content, settings.AddSpaces)
	}

	r.reply(ctx, c, replySynthesizing)

	outcome, err := r.Synthesizer.Synthesize(ctx, content, params, settings.APIKey)
	if err != nil {
		r.Logger.Error("Synthesis request for user %s failed: %v", c.msg.UserID, err)
		r.reply(ctx, c, replyInternalError)

		return
	}

	switch result := outcome.(type) {
	case synthesis.Audio:
		r.deliver(ctx, c, result.Locator)
	case synthesis.TransportError:
		r.Logger.Warn("Synthesis for user %s rejected: %s", c.msg.UserID, result)
		r.reply(ctx, c, replyTransportError, result.StatusCode, result.Body)
	case synthesis.APIError:
		r.Logger.Warn("Synthesis for user %s failed: %s", c.msg.UserID, result)
		r.reply(ctx, c, replyAPIError, apiErrorTip(result))
	default:
		r.Logger.Error("Unexpected synthesis outcome %T", outcome)
		r.reply(ctx, c, replyInternalError)
	}
}

func (r *Router) deliver(ctx context.Context, c call, locator string) {
	err := r.Deliverer.Deliver(ctx, c.surface, locator)
	if err != nil {
		r.Logger.Error("Failed to deliver audio to user %s: %v", c.msg.UserID, err)
		r.reply(ctx, c, replyDeliveryFailed)

		return
	}

	r.Logger.Info("Delivered audio to user %s", c.msg.UserID)
}

func apiErrorTip(e synthesis.APIError) string {
	if tip, ok := apiErrorTips[e.Code]; ok {
		return tip
	}

	if e.Body == "" {
		return replyAPINoAudio
	}

	return fmt.Sprintf(replyAPIReturned, e.Body)
}
