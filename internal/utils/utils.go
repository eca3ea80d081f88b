package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindConfigFile tries to find the dbexport config file in the current
// directory or any parent directory, falling back to the global config
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %v", err)
	}
	for {
		configPath := filepath.Join(dir, "dbexport.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached root directory
		}
		dir = parent
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %v", err)
	}

	globalConfig := filepath.Join(homeDir, ".dbexport", "config.yaml")
	if _, err := os.Stat(globalConfig); err == nil {
		return globalConfig, nil
	}

	return "", fmt.Errorf("no config file found in project or ~/.dbexport/config.yaml")
}

// HumanSize formats a byte count with 1024 thresholds (B/KB/MB).
func HumanSize(n int64) string {
	switch {
	case n > 1024*1024:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	case n > 1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
