// Package version provides build-time version information.
//
// Set at build time via:
//
//	go build -ldflags "-X github.com/vizi2000/agentzero-cli/internal/version.GitCommit=$(git rev-parse --short HEAD)"
package version

// Version is the release version of the CLI.
var Version = "0.1.0"

// GitCommit is the short git commit hash, set at build time via ldflags.
var GitCommit = "dev"
