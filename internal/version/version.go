// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// Version information injected with -ldflags at release time
var (
	// Version is the current version of payee-scan
	Version = "0.0.0-development"

	// GitCommit is the git commit hash
	GitCommit = "unknown"

	// BuildDate is when the binary was built
	BuildDate = "unknown"

	// RulesVersion identifies the embedded country rule table
	RulesVersion = "2025.1"

	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info returns formatted version information
func Info() string {
	return fmt.Sprintf("payee-scan %s (rules: %s, commit: %s, built: %s, go: %s, platform: %s)",
		Version, RulesVersion, GitCommit, BuildDate, GoVersion, Platform)
}

// Short returns just the version number
func Short() string {
	return Version
}

// Full returns detailed version information for the health endpoint
func Full() map[string]string {
	return map[string]string{
		"version":      Version,
		"rulesVersion": RulesVersion,
		"commit":       GitCommit,
		"buildDate":    BuildDate,
		"goVersion":    GoVersion,
		"platform":     Platform,
	}
}
