package version

import (
	"fmt"
	"strings"
)

// Version is the current released version.
// This value can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/hrygo/plotbuddy/internal/version.Version=v0.3.0"
var Version = "0.0.0-dev"

// GitCommit is the git commit hash at build time.
var GitCommit = "unknown"

// BuildTime is the build timestamp in RFC3339 format.
var BuildTime = "unknown"

func shortCommit() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return ""
	}
	if len(GitCommit) > 8 {
		return GitCommit[:8]
	}
	return GitCommit
}

// String returns the version string with optional commit hash.
func String() string {
	if c := shortCommit(); c != "" {
		return fmt.Sprintf("%s-%s", Version, c)
	}
	return Version
}

// StringFull returns the complete version information including build metadata.
func StringFull() string {
	parts := []string{fmt.Sprintf("Version=%s", Version)}
	if c := shortCommit(); c != "" {
		parts = append(parts, fmt.Sprintf("Commit=%s", c))
	}
	if BuildTime != "" && BuildTime != "unknown" {
		parts = append(parts, fmt.Sprintf("BuildTime=%s", BuildTime))
	}
	return strings.Join(parts, " ")
}
