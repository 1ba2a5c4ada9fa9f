package widetable

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	widetableDir = ".widetable"
)

// GetWidetableDir returns the path to the widetable directory in the user's home directory.
func GetWidetableDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, widetableDir)

	return dir, nil
}
