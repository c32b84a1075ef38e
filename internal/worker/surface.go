package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoAudioStore indicates a local file upload without an audio store.
	ErrNoAudioStore = errors.New("no audio store configured for local uploads")
	// ErrNotURL indicates an attachment locator that is not an http(s) URL.
	ErrNotURL = errors.New("locator is not an http(s) URL")
)

// natsSurface publishes the replies of one CommandEvent.
type natsSurface struct {
	worker  *NatsWorker
	event   *CommandEvent
	subject string
}

func (s *natsSurface) Reply(_ context.Context, text string) error {
	return s.publish(ReplyEvent{Kind: ReplyText, Text: text})
}

func (s *natsSurface) UploadRecord(ctx context.Context, source string) error {
	if isURL(source) {
		return s.publish(ReplyEvent{Kind: ReplyRecord, URL: source})
	}

	if s.worker.audio == nil {
		return ErrNoAudioStore
	}

	key, err := s.worker.audio.PutFile(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to store local audio: %w", err)
	}

	return s.publish(ReplyEvent{Kind: ReplyRecord, AudioKey: key})
}

func (s *natsSurface) AttachRecord(_ context.Context, locator string) error {
	if !isURL(locator) {
		return ErrNotURL
	}

	return s.publish(ReplyEvent{Kind: ReplyAttachment, URL: locator})
}

func (s *natsSurface) publish(reply ReplyEvent) error {
	reply.Header = s.event.Header
	reply.Header.EventID = uuid.NewString()
	reply.Header.Timestamp = time.Now()
	reply.ChatID = s.event.ChatID

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = s.worker.natsConnection.Publish(s.subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func isURL(source string) bool {
	parsed, err := url.Parse(source)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
