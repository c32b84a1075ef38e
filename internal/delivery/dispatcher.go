// Package delivery hands synthesized audio to the chat surface through an
// ordered chain of fallback tiers.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/core"
)

const (
	// DefaultScratchDir holds the temporary files of the local-upload tier.
	DefaultScratchDir = "temp"
	// maxAudioBytes bounds the in-memory download of the local-upload tier.
	maxAudioBytes = 64 << 20
)

// Static errors.
var (
	ErrUndelivered    = errors.New("all delivery tiers failed")
	ErrDownloadStatus = errors.New("audio download returned non-success status")
	ErrAudioTooLarge  = errors.New("audio payload exceeds size limit")
)

// Tier is one delivery strategy.
type Tier struct {
	Name    string
	Deliver func(ctx context.Context, surface core.Surface, locator string) error
}

// Dispatcher tries each tier in order until one succeeds. It holds no
// per-request state and is safe for concurrent use.
type Dispatcher struct {
	tiers      []Tier
	httpClient *http.Client
	scratchDir string
	log        *logger.Logger
}

// NewDispatcher creates the standard three-tier chain: direct upload of the
// URL, direct attachment of the URL, then download and upload of a local copy.
func NewDispatcher(scratchDir string, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if scratchDir == "" {
		scratchDir = DefaultScratchDir
	}

	d := &Dispatcher{
		httpClient: &http.Client{Timeout: timeout},
		scratchDir: scratchDir,
		log:        log,
	}

	d.tiers = []Tier{
		{Name: "direct-upload", Deliver: uploadURL},
		{Name: "direct-attach", Deliver: attachURL},
		{Name: "local-upload", Deliver: d.uploadLocalCopy},
	}

	return d
}

// NewDispatcherWithTiers creates a dispatcher over a custom chain.
func NewDispatcherWithTiers(tiers []Tier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{tiers: tiers, log: log}
}

// Deliver sends the audio at locator to surface. When every tier fails the
// returned error wraps ErrUndelivered and each tier's error.
func (d *Dispatcher) Deliver(ctx context.Context, surface core.Surface, locator string) error {
	errs := make([]error, 0, len(d.tiers))

	for _, tier := range d.tiers {
		err := tryTier(ctx, tier, surface, locator)
		if err == nil {
			return nil
		}

		d.log.Warn("Delivery tier %s failed: %v", tier.Name, err)

		errs = append(errs, fmt.Errorf("%s: %w", tier.Name, err))
	}

	return fmt.Errorf("%w: %w", ErrUndelivered, errors.Join(errs...))
}

// tryTier runs a tier, turning a panic into an error.
func tryTier(ctx context.Context, tier Tier, surface core.Surface, locator string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	return tier.Deliver(ctx, surface, locator)
}

func uploadURL(ctx context.Context, surface core.Surface, locator string) error {
	return surface.UploadRecord(ctx, locator)
}

func attachURL(ctx context.Context, surface core.Surface, locator string) error {
	return surface.AttachRecord(ctx, locator)
}

func (d *Dispatcher) uploadLocalCopy(ctx context.Context, surface core.Surface, locator string) error {
	audio, err := d.download(ctx, locator)
	if err != nil {
		return err
	}

	return withTempFile(d.scratchDir, audio, func(path string) error {
		return surface.UploadRecord(ctx, path)
	}, d.log)
}

func (d *Dispatcher) download(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the locator, which may carry the api key.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrDownloadStatus, resp.Status)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	if len(audio) > maxAudioBytes {
		return nil, ErrAudioTooLarge
	}

	return audio, nil
}
