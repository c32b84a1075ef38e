// Package core defines the collaborator interfaces shared by the voicevox service.
package core

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by a KeyValueStore when no value is stored under a key.
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore defines the interface for the external keyed store holding
// per-identity preference records.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Surface is the reply channel of the chat host for a single inbound command.
// UploadRecord accepts either a URL or a local file path; AttachRecord only
// accepts a URL.
type Surface interface {
	Reply(ctx context.Context, text string) error
	UploadRecord(ctx context.Context, source string) error
	AttachRecord(ctx context.Context, locator string) error
}
