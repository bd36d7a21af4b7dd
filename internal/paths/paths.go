// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "payee-scan"

// GetConfigDir returns the payee-scan configuration directory.
// PAYEE_CONFIG_DIR overrides the platform default.
func GetConfigDir() string {
	if dir := os.Getenv("PAYEE_CONFIG_DIR"); dir != "" {
		return dir
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// GetConfigFile returns the path to the user config file
func GetConfigFile() string {
	dir := GetConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// ConfigSearchPaths returns the config file candidates in lookup order:
// the working directory first, then the user config directory, then the
// home directory.
func ConfigSearchPaths() []string {
	candidates := []string{"payee-scan.yaml", ".payee-scan.yaml"}
	if f := GetConfigFile(); f != "" {
		candidates = append(candidates, f)
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".payee-scan.yaml"))
	}
	return candidates
}

// ExpandHome replaces a leading "~/" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	if runtime.GOOS == "windows" {
		for i, char := range path {
			if strings.ContainsRune(`<>"|?*`, char) || (char == ':' && i != 1) {
				return &PathValidationError{Path: path, Reason: "contains invalid character: " + string(char)}
			}
		}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
