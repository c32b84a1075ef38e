package delivery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// tempName returns a timestamp-qualified file name; the random suffix keeps
// concurrent requests within the same millisecond apart.
func tempName() string {
	return fmt.Sprintf("voicevox_%d_%s.wav", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// withTempFile writes data to a fresh file under dir, runs use with its path
// and removes the file on every exit path, panics included.
func withTempFile(dir string, data []byte, use func(path string) error, log *logger.Logger) error {
	err := os.MkdirAll(dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}

	path := filepath.Join(dir, tempName())

	defer func() {
		removeErr := os.Remove(path)
		if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			log.Warn("Failed to remove temp file '%s': %v", path, removeErr)
		}
	}()

	err = os.WriteFile(path, data, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	return use(path)
}
