package workspace

import (
	"path/filepath"
	"strings"
)

// sensitiveFilePatterns is the static deny-list of filename globs that are
// excluded from preview/context selection entirely. This gate is coarser
// than content redaction and independent of it: a file can pass this gate
// by name and still need its content scrubbed.
var sensitiveFilePatterns = []string{
	"config.yaml",
	"config.yml",
	".env",
	".env.*",
	"*.env",
	"secrets.*",
	"credentials.*",
	"credentials",
	"*.pem",
	"*.key",
	"*.p12",
	"*.pfx",
	"id_rsa",
	"id_rsa.*",
	"id_ed25519",
	"id_ed25519.*",
	"id_dsa",
	"id_ecdsa",
	"*.keystore",
	"*.jks",
	".netrc",
	".npmrc",
	".pypirc",
	"htpasswd",
	".htpasswd",
}

// IsSensitiveFile reports whether a relative path matches the deny-list.
// Patterns are matched with glob semantics against both the full relative
// path (slash-normalized) and the basename.
func IsSensitiveFile(relPath string) bool {
	normalized := filepath.ToSlash(strings.TrimSpace(relPath))
	if normalized == "" {
		return false
	}
	base := strings.ToLower(filepath.Base(normalized))
	full := strings.ToLower(normalized)

	for _, pattern := range sensitiveFilePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, full); ok {
			return true
		}
	}
	return false
}
