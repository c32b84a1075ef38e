package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/core"
)

const keyFormat = "voicevox:user:%s:prefs"

// Store persists preference records through an external key-value store.
// Storage failures never propagate: reads degrade to an empty record and
// writes report false.
type Store struct {
	kv  core.KeyValueStore
	log *logger.Logger
}

// NewStore creates a preference store backed by kv.
func NewStore(kv core.KeyValueStore, log *logger.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Key returns the storage key for an identity.
func Key(identity string) string {
	return fmt.Sprintf(keyFormat, identity)
}

// Get returns the stored record for identity, or an empty record.
func (s *Store) Get(ctx context.Context, identity string) Record {
	data, err := s.kv.Get(ctx, Key(identity))
	if err != nil {
		if !errors.Is(err, core.ErrKeyNotFound) {
			s.log.Error("Failed to read preferences for %s: %v", identity, err)
		}

		return Record{}
	}

	var rec Record

	err = json.Unmarshal(data, &rec)
	if err != nil {
		s.log.Error("Failed to decode preferences for %s: %v", identity, err)

		return Record{}
	}

	return rec
}

// Set replaces the stored record for identity.
func (s *Store) Set(ctx context.Context, identity string, rec Record) bool {
	data, err := json.Marshal(rec)
	if err != nil {
		s.log.Error("Failed to encode preferences for %s: %v", identity, err)

		return false
	}

	err = s.kv.Put(ctx, Key(identity), data)
	if err != nil {
		s.log.Error("Failed to save preferences for %s: %v", identity, err)

		return false
	}

	return true
}

// Clear deletes the stored record for identity.
func (s *Store) Clear(ctx context.Context, identity string) bool {
	err := s.kv.Delete(ctx, Key(identity))
	if err != nil && !errors.Is(err, core.ErrKeyNotFound) {
		s.log.Error("Failed to reset preferences for %s: %v", identity, err)

		return false
	}

	return true
}
