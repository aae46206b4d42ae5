package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

const (
	appDirName = "go-bookmarks"
	dbFileName = "bookmarks.db"
)

// DefaultDatabasePath returns the per-user database location. It is
// deterministic: the same user on the same machine always gets the same path.
func DefaultDatabasePath() (string, error) {
	dir, err := dataDir(runtime.GOOS, os.Getenv, os.UserHomeDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName, dbFileName), nil
}

var errNoDataDir = errors.New("could not find data directory")

func dataDir(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	switch goos {
	case "windows":
		if dir := getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		return "", fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, errNoDataDir)
	case "darwin":
		h, err := home()
		if err != nil || h == "" {
			return "", fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, errNoDataDir)
		}
		return filepath.Join(h, "Library", "Application Support"), nil
	default:
		if dir := getenv("XDG_DATA_HOME"); dir != "" && filepath.IsAbs(dir) {
			return dir, nil
		}
		h, err := home()
		if err != nil || h == "" {
			return "", fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, errNoDataDir)
		}
		return filepath.Join(h, ".local", "share"), nil
	}
}
