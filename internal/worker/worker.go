// Package worker provides a NATS worker that runs chat commands received as
// events and publishes the resulting replies.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/command"
	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/nats-io/nats.go"
)

const (
	handleMessageTimeout = 3 * time.Minute
	drainTimeout         = 10 * time.Second
	drainPollInterval    = 20 * time.Millisecond
)

var (
	// ErrSubjectEmpty indicates that no command subject was configured.
	ErrSubjectEmpty = errors.New("command subject cannot be empty")
	// ErrReplySubjectEmpty indicates that neither the event nor the worker names a reply subject.
	ErrReplySubjectEmpty = errors.New("reply subject cannot be empty")
)

// Handler runs one chat command against a surface.
type Handler interface {
	Handle(ctx context.Context, msg command.Message, surface core.Surface) bool
}

// AudioStore keeps local audio files for consumers of reply events.
type AudioStore interface {
	PutFile(ctx context.Context, path string) (string, error)
}

// NatsWorker consumes CommandEvents from a queue group. Every message is
// handled in its own goroutine.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	queueGroup     string
	replySubject   string
	handler        Handler
	audio          AudioStore
	log            *logger.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewNatsWorker creates a new instance of a NATS worker. audio may be nil, in
// which case local files cannot be uploaded through the NATS surface.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	queueGroup string,
	replySubject string,
	handler Handler,
	audio AudioStore,
	log *logger.Logger,
) (*NatsWorker, error) {
	if subject == "" {
		return nil, ErrSubjectEmpty
	}

	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		queueGroup:     queueGroup,
		replySubject:   replySubject,
		handler:        handler,
		audio:          audio,
		log:            log,
	}, nil
}

// Run starts the worker and blocks until ctx is done. On shutdown the
// subscription is drained and in-flight commands are awaited.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.QueueSubscribe(w.subject, w.queueGroup, func(msg *nats.Msg) {
		if !w.begin() {
			w.log.Warn("Dropping command on %s received after shutdown", msg.Subject)

			return
		}

		go func() {
			defer w.inflight.Done()

			w.handleMessage(context.WithoutCancel(ctx), msg)
		}()
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	w.log.Info("Listening for commands on %s (queue %s)", w.subject, w.queueGroup)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	deadline := time.Now().Add(drainTimeout)
	for sub.IsValid() && time.Now().Before(deadline) {
		time.Sleep(drainPollInterval)
	}

	w.finish()

	return nil
}

// begin registers one in-flight command. It reports false once finish has
// started, after which no new command may be accepted.
func (w *NatsWorker) begin() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}

	w.inflight.Add(1)

	return true
}

// finish stops accepting commands and waits for the in-flight ones.
func (w *NatsWorker) finish() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	w.inflight.Wait()
}

func (w *NatsWorker) handleMessage(parent context.Context, msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(parent, handleMessageTimeout)
	defer cancel()

	event, err := parseEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse command event: %v", err)

		return
	}

	surface := &natsSurface{worker: w, event: event, subject: event.ReplySubject}
	if surface.subject == "" {
		surface.subject = w.replySubject
	}

	if surface.subject == "" {
		w.log.Error("Dropping command event %s: %v", event.Header.EventID, ErrReplySubjectEmpty)

		return
	}

	handled := w.handler.Handle(ctx, command.Message{
		UserID:   event.UserID,
		Text:     event.Text,
		IsMaster: event.IsMaster,
	}, surface)
	if !handled {
		w.log.Info("Ignoring non-command event %s from user %s", event.Header.EventID, event.UserID)
	}
}

func parseEvent(msg *nats.Msg) (*CommandEvent, error) {
	var event CommandEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}
