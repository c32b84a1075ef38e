// Package objectstore_test tests the NATS object store implementation.
package objectstore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/book-expert/voicevox-service/internal/objectstore"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StartTestServer starts an in-process JetStream-enabled NATS server.
func StartTestServer(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	opts := test.DefaultTestOptions
	opts.Port = -1 // Use a random port
	opts.JetStream = true
	opts.StoreDir = t.TempDir()
	natsServer := test.RunServer(&opts)

	natsConnection, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		t.Fatalf("Failed to connect to test NATS server: %v", err)
	}

	return natsServer, natsConnection
}

func TestNatsObjectStore_PutGet(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := StartTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "AUDIO")
	require.NoError(t, err)
	assert.Equal(t, "AUDIO", store.Bucket())

	ctx := context.Background()
	audio := []byte("RIFF....WAVEfmt ")

	require.NoError(t, store.Put(ctx, "clip.wav", audio))

	got, err := store.Get(ctx, "clip.wav")
	require.NoError(t, err)
	assert.Equal(t, audio, got)

	_, err = store.Get(ctx, "missing.wav")
	require.Error(t, err)
}

func TestNatsObjectStore_PutFile(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := StartTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	store, err := objectstore.New(jetstreamContext, "AUDIO")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "voicevox_1.wav")
	require.NoError(t, os.WriteFile(path, []byte("pcm"), 0o600))

	ctx := context.Background()

	key, err := store.PutFile(ctx, path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "voicevox_"))
	assert.True(t, strings.HasSuffix(key, ".wav"))

	// The source can go away once PutFile returns.
	require.NoError(t, os.Remove(path))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("pcm"), got)

	_, err = store.PutFile(ctx, path)
	require.Error(t, err)
}

func TestNew_BindsExistingBucket(t *testing.T) {
	t.Parallel()

	natsServer, natsConnection := StartTestServer(t)
	defer natsServer.Shutdown()
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	require.NoError(t, err)

	first, err := objectstore.New(jetstreamContext, "AUDIO")
	require.NoError(t, err)
	require.NoError(t, first.Put(context.Background(), "k", []byte("v")))

	second, err := objectstore.New(jetstreamContext, "AUDIO")
	require.NoError(t, err)

	got, err := second.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
