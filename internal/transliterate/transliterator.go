package transliterate

import (
	"context"
	"strings"
	"time"

	"github.com/book-expert/logger"
	"golang.org/x/time/rate"
)

// DefaultDelay is the spacing between two reading requests.
const DefaultDelay = 50 * time.Millisecond

// Transliterator rewrites Han runs as katakana and leaves everything else
// untouched. Conversion is advisory: failures degrade to the original text.
// One limiter is shared by all callers, so concurrent commands are spaced too.
type Transliterator struct {
	lookup  Lookup
	limiter *rate.Limiter
	log     *logger.Logger
}

// New creates a Transliterator issuing at most one lookup per delay.
func New(lookup Lookup, delay time.Duration, log *logger.Logger) *Transliterator {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Transliterator{
		lookup:  lookup,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// Convert returns text with every Han run replaced by katakana. When spaced
// is set, each converted character is followed by a space within its run.
// The result is trimmed; text without Han runes is returned unchanged.
func (t *Transliterator) Convert(ctx context.Context, text string, spaced bool) (result string) {
	if !ContainsHan(text) {
		return text
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			t.log.Error("Transliteration aborted, using original text: %v", recovered)

			result = text
		}
	}()

	var builder strings.Builder

	for segment := range Segments(text) {
		if !segment.Han {
			builder.WriteString(segment.Text)

			continue
		}

		builder.WriteString(t.convertRun(ctx, segment.Text, spaced))
	}

	return strings.TrimSpace(builder.String())
}

func (t *Transliterator) convertRun(ctx context.Context, run string, spaced bool) string {
	var builder strings.Builder

	for _, han := range run {
		reading, err := t.lookupOne(ctx, han)
		if err != nil {
			t.log.Warn("Failed to convert %q, keeping it: %v", han, err)
			builder.WriteRune(han)

			continue
		}

		builder.WriteString(reading)

		if spaced {
			builder.WriteByte(' ')
		}
	}

	return strings.TrimSpace(builder.String())
}

func (t *Transliterator) lookupOne(ctx context.Context, han rune) (string, error) {
	err := t.limiter.Wait(ctx)
	if err != nil {
		return "", err
	}

	return t.lookup.Katakana(ctx, han)
}
