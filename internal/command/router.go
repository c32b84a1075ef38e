// Package command routes chat commands to the preference, listing and speech
// handlers of the voicevox service.
package command

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/config"
	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/book-expert/voicevox-service/internal/prefs"
	"github.com/book-expert/voicevox-service/internal/speaker"
	"github.com/book-expert/voicevox-service/internal/synthesis"
)

// Message is one inbound chat command.
type Message struct {
	UserID   string
	Text     string
	IsMaster bool
}

// SettingsStore reads and mutates the settings document.
type SettingsStore interface {
	Settings() config.Settings
	SetAPIKey(apiKey string) error
	SetAddSpaces(enabled bool) error
}

// PreferenceStore holds per-identity preference records.
type PreferenceStore interface {
	Get(ctx context.Context, identity string) prefs.Record
	Set(ctx context.Context, identity string, rec prefs.Record) bool
	Clear(ctx context.Context, identity string) bool
}

// SpeakerDirectory resolves and lists voices.
type SpeakerDirectory interface {
	Resolve(token string) (int, bool)
	Name(id int) (string, bool)
	Filter(term string) []speaker.Speaker
	Groups() []speaker.Group
}

// Transliterator rewrites Han text into katakana.
type Transliterator interface {
	Convert(ctx context.Context, text string, spaced bool) string
}

// Synthesizer calls the synthesis API.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, params prefs.Parameters, apiKey string) (synthesis.Outcome, error)
}

// Deliverer hands an audio locator to the surface.
type Deliverer interface {
	Deliver(ctx context.Context, surface core.Surface, locator string) error
}

// Dependencies are the collaborators of a Router.
type Dependencies struct {
	Settings       SettingsStore
	Prefs          PreferenceStore
	Speakers       SpeakerDirectory
	Transliterator Transliterator
	Synthesizer    Synthesizer
	Deliverer      Deliverer
	Logger         *logger.Logger
}

// call is one matched command handed to a handler.
type call struct {
	msg     Message
	surface core.Surface
	// arg is the first capture group of the matching rule, trimmed.
	arg string
}

// rule maps a command pattern to its handler. Rules are evaluated in order
// and the first match wins.
type rule struct {
	name    string
	pattern *regexp.Regexp
	handle  func(r *Router, ctx context.Context, c call)
}

// Router dispatches chat commands. It is safe for concurrent use.
type Router struct {
	Dependencies

	prefix        string
	chinesePrefix string
	rules         []rule
}

// New creates a Router for the command prefix found in the settings document.
func New(deps Dependencies) *Router {
	prefix := deps.Settings.Settings().Command
	if prefix == "" {
		prefix = config.DefaultCommand
	}

	r := &Router{
		Dependencies:  deps,
		prefix:        prefix,
		chinesePrefix: chinesePrefix(prefix),
	}
	r.rules = buildRules(prefix, r.chinesePrefix)

	return r
}

// Prefix returns the command prefix the router answers to.
func (r *Router) Prefix() string {
	return r.prefix
}

// buildRules returns the dispatch table:
//
//	help      #vv帮助 | vv帮助 | #vv help
//	setkey    #vv setkey <key>            (master)
//	setspace  #vv setspace <on|off>       (master)
//	set       #vv set <param> <value>
//	get       #vv get
//	reset     #vv reset
//	list      #vv list [term]             (term may follow without a space)
//	chinese   #cvv [<speaker>] <text>
//	speak     #vv [<speaker>] <text>
func buildRules(prefix, chinese string) []rule {
	p := regexp.QuoteMeta(prefix)
	bare := regexp.QuoteMeta(strings.TrimPrefix(prefix, "#"))
	sub := func(word string) *regexp.Regexp {
		return regexp.MustCompile(`(?is)^` + p + `\s+` + word + `(?:\s+(.*))?$`)
	}
	exact := func(word string) *regexp.Regexp {
		return regexp.MustCompile(`(?i)^` + p + `\s+` + word + `\s*$`)
	}

	return []rule{
		{"help", regexp.MustCompile(`(?i)^#?` + bare + `(?:帮助|\s+help)\s*$`), (*Router).handleHelp},
		{"setkey", sub("setkey"), (*Router).handleSetKey},
		{"setspace", sub("setspace"), (*Router).handleSetSpace},
		{"set", sub("set"), (*Router).handleSet},
		{"get", exact("get"), (*Router).handleGet},
		{"reset", exact("reset"), (*Router).handleReset},
		{"list", regexp.MustCompile(`(?is)^` + p + `\s+list\s*(.*)$`), (*Router).handleList},
		{"chinese", regexp.MustCompile(`(?is)^` + regexp.QuoteMeta(chinese) + `(.*)$`), (*Router).handleChineseSpeak},
		{"speak", regexp.MustCompile(`(?is)^` + p + `(.*)$`), (*Router).handleSpeak},
	}
}

// chinesePrefix derives the Chinese speech command: "#vv" becomes "#cvv".
func chinesePrefix(prefix string) string {
	if rest, ok := strings.CutPrefix(prefix, "#"); ok {
		return "#c" + rest
	}

	return "c" + prefix
}

// Handle runs the first rule matching msg.Text and reports whether any rule
// matched. Every matched command ends in at least one reply on surface.
func (r *Router) Handle(ctx context.Context, msg Message, surface core.Surface) (handled bool) {
	text := strings.TrimSpace(msg.Text)

	for _, rl := range r.rules {
		match := rl.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		arg := ""
		if len(match) > 1 {
			arg = strings.TrimSpace(match[1])
		}

		r.run(ctx, rl, call{msg: msg, surface: surface, arg: arg})

		return true
	}

	return false
}

func (r *Router) run(ctx context.Context, rl rule, c call) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Error("Command %q from user %s panicked: %v", rl.name, c.msg.UserID, rec)
			r.reply(ctx, c, replyInternalError)
		}
	}()

	rl.handle(r, ctx, c)
}

func (r *Router) reply(ctx context.Context, c call, format string, args ...any) {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}

	err := c.surface.Reply(ctx, text)
	if err != nil {
		r.Logger.Error("Failed to reply to user %s: %v", c.msg.UserID, err)
	}
}
