package kvstore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/nats-io/nats.go"
)

const encodedTokenMarker = "="

// NatsKeyValue implements core.KeyValueStore on a NATS JetStream KeyValue bucket.
type NatsKeyValue struct {
	bucket string
	kv     nats.KeyValue
}

// NewNatsKeyValue binds to bucketName, creating it when it does not exist yet.
func NewNatsKeyValue(jetstreamContext nats.JetStreamContext, bucketName string) (*NatsKeyValue, error) {
	kv, err := jetstreamContext.KeyValue(bucketName)
	if err != nil {
		if !errors.Is(err, nats.ErrBucketNotFound) {
			return nil, fmt.Errorf("failed to bind to key-value bucket '%s': %w", bucketName, err)
		}

		kv, err = jetstreamContext.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucketName,
			Description: "Per-user VoiceVox preferences.",
			History:     1,
			Storage:     nats.FileStorage,
			Replicas:    1,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create key-value bucket '%s': %w", bucketName, err)
		}
	}

	return &NatsKeyValue{bucket: bucketName, kv: kv}, nil
}

// Get reads the latest value of key.
func (n *NatsKeyValue) Get(_ context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(natsKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", core.ErrKeyNotFound, key)
		}

		return nil, fmt.Errorf("failed to get key '%s' from bucket '%s': %w", key, n.bucket, err)
	}

	return entry.Value(), nil
}

// Put writes value under key.
func (n *NatsKeyValue) Put(_ context.Context, key string, value []byte) error {
	_, err := n.kv.Put(natsKey(key), value)
	if err != nil {
		return fmt.Errorf("failed to put key '%s' to bucket '%s': %w", key, n.bucket, err)
	}

	return nil
}

// Delete places a delete marker for key.
func (n *NatsKeyValue) Delete(_ context.Context, key string) error {
	err := n.kv.Delete(natsKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key '%s' from bucket '%s': %w", key, n.bucket, err)
	}

	return nil
}

// natsKey maps a key onto the NATS key alphabet. Colon-separated tokens
// become dot-separated tokens. A token made only of [A-Za-z0-9_-] is kept as
// is; any other token, the empty one included, becomes '=' followed by its
// unpadded base64url encoding. Plain tokens never start with '=', so the
// mapping is injective and never yields an empty token.
func natsKey(key string) string {
	tokens := strings.Split(key, ":")
	for i, token := range tokens {
		if !isPlainToken(token) {
			tokens[i] = encodedTokenMarker + base64.RawURLEncoding.EncodeToString([]byte(token))
		}
	}

	return strings.Join(tokens, ".")
}

func isPlainToken(token string) bool {
	if token == "" {
		return false
	}

	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_':
		default:
			return false
		}
	}

	return true
}
