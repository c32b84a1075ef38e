package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/channels/telegram"
	"github.com/book-expert/voicevox-service/internal/config"
	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/book-expert/voicevox-service/internal/kvstore"
	"github.com/book-expert/voicevox-service/internal/objectstore"
	"github.com/book-expert/voicevox-service/internal/worker"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

// ErrUnknownBackend indicates an unsupported prefs.backend value.
var ErrUnknownBackend = errors.New("unknown preference backend")

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Consume commands from NATS and, when configured, Telegram",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx)
		},
	}
}

// loadConfig runs the bootstrap sequence: a temporary logger, the
// configuration, then the final logger under paths.base_logs_dir.
func loadConfig() (*config.Config, *logger.Logger, error) {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir(), bootstrapLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return nil, nil, err
	}

	defer func() { _ = bootstrapLog.Close() }()

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, serviceLogFile)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return nil, nil, fmt.Errorf("failed to create final logger: %w", err)
	}

	return cfg, finalLog, nil
}

func serve(ctx context.Context) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 4. Connect to NATS and open the JetStream stores
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, closeKV, err := openPrefsBackend(ctx, cfg, jetstreamContext)
	if err != nil {
		return err
	}
	defer closeKV()

	audio, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to open audio store: %w", err)
	}

	// 5. Build the command router over the stores
	router, err := buildRouter(cfg, kv, log)
	if err != nil {
		return err
	}

	// 6. Create the NATS worker and the optional Telegram channel
	natsWorker, err := worker.NewNatsWorker(
		natsConnection, cfg.NATS.CommandSubject, cfg.NATS.QueueGroup, cfg.NATS.ReplySubject, router, audio, log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	runners := []func(context.Context) error{natsWorker.Run}

	if cfg.Telegram.Token != "" {
		channel, channelErr := telegram.New(cfg.Telegram.Token, cfg.Telegram.Masters, router, log)
		if channelErr != nil {
			return fmt.Errorf("failed to create telegram channel: %w", channelErr)
		}

		runners = append(runners, channel.Run)
	}

	// 7. Log confirmation message and run until shutdown
	log.System("VoiceVox service initialized (prefix %s, prefs backend %s). Listening for commands on subject: %s",
		router.Prefix(), cfg.Prefs.Backend, cfg.NATS.CommandSubject)

	return runAll(ctx, runners)
}

// runAll runs every runner until ctx is done or one of them fails, and
// returns the joined errors after all have stopped.
func runAll(ctx context.Context, runners []func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan error, len(runners))

	for _, run := range runners {
		go func() {
			runErr := run(ctx)
			if runErr != nil {
				cancel()
			}

			results <- runErr
		}()
	}

	var errs []error

	for range runners {
		errs = append(errs, <-results)
	}

	return errors.Join(errs...)
}

func openPrefsBackend(ctx context.Context, cfg *config.Config, jetstreamContext nats.JetStreamContext) (core.KeyValueStore, func(), error) {
	switch cfg.Prefs.Backend {
	case config.BackendNATS:
		kv, err := kvstore.NewNatsKeyValue(jetstreamContext, cfg.NATS.PrefsBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open NATS preference bucket: %w", err)
		}

		return kv, func() {}, nil
	case config.BackendRedis:
		kv := kvstore.NewRedis(kvstore.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		err := kv.Ping(ctx)
		if err != nil {
			_ = kv.Close()

			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}

		return kv, func() { _ = kv.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Prefs.Backend)
	}
}
