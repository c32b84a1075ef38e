package main

import (
	"fmt"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/command"
	"github.com/book-expert/voicevox-service/internal/config"
	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/book-expert/voicevox-service/internal/delivery"
	"github.com/book-expert/voicevox-service/internal/prefs"
	"github.com/book-expert/voicevox-service/internal/speaker"
	"github.com/book-expert/voicevox-service/internal/synthesis"
	"github.com/book-expert/voicevox-service/internal/transliterate"
)

// buildRouter assembles the command router around a preference backend.
func buildRouter(cfg *config.Config, kv core.KeyValueStore, log *logger.Logger) (*command.Router, error) {
	settings, err := config.LoadSettings(cfg.VoiceVox.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	timeout := cfg.VoiceVox.Timeout()
	lookup := transliterate.NewHTTPLookup(cfg.VoiceVox.TransliterateURL, timeout)

	return command.New(command.Dependencies{
		Settings:       settings,
		Prefs:          prefs.NewStore(kv, log),
		Speakers:       speaker.NewDefault(),
		Transliterator: transliterate.New(lookup, cfg.VoiceVox.TransliterateDelay(), log),
		Synthesizer:    synthesis.NewClient(settings.Settings().BaseURL, timeout),
		Deliverer:      delivery.NewDispatcher(cfg.VoiceVox.ScratchDir, timeout, log),
		Logger:         log,
	}), nil
}
