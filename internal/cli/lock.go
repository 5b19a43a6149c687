package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockPath names the lock file for a script. Keying on the absolute path
// makes two spellings of the same script share one lock.
func lockPath(scriptPath string) (string, error) {
	abs, err := filepath.Abs(scriptPath)
	if err != nil {
		return "", fmt.Errorf("resolving script path: %w", err)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(os.TempDir(), "scriptrun-"+hex.EncodeToString(sum[:8])+".lock"), nil
}

// errScriptLocked is returned when another process is running the script.
var errScriptLocked = errors.New("script is already running in another process")

// acquireScriptLock takes a non-blocking exclusive lock for scriptPath.
// The returned release func is safe to call once.
func acquireScriptLock(scriptPath string) (func(), error) {
	path, err := lockPath(scriptPath)
	if err != nil {
		return nil, err
	}

	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", scriptPath, errScriptLocked)
	}

	return func() { _ = lock.Unlock() }, nil
}
