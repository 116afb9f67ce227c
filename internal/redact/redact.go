// Package redact masks secret-shaped content before any workspace text is
// transmitted to a remote backend. Redaction is irreversible: the masked
// value is never recoverable from the output.
package redact

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Sentinel replaces every masked value.
const Sentinel = "***REDACTED***"

// Redactor masks values of configured keys and matches of configured
// regular expressions. Zero value redacts nothing.
type Redactor struct {
	keys     []string
	patterns []*regexp.Regexp

	once     sync.Once
	keyRules []*regexp.Regexp
}

// New builds a Redactor from case-insensitive key names and raw regex
// patterns. Invalid patterns are rejected.
func New(keys []string, patterns []string) (*Redactor, error) {
	r := &Redactor{keys: keys}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// compileKeyRules builds per-key regexes lazily on first use.
// Two shapes per key, value replaced, key and punctuation preserved:
//
//	key: value          (YAML style, arbitrary trailing whitespace)
//	"key": value        (JSON style, optional trailing comma handling by
//	                     stopping the value before a closing quote/comma)
func (r *Redactor) compileKeyRules() {
	for _, key := range r.keys {
		k := regexp.QuoteMeta(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		// YAML style: capture "key:" plus following whitespace, mask the rest
		// of the line.
		r.keyRules = append(r.keyRules,
			regexp.MustCompile(`(?im)^(\s*`+k+`\s*:\s*)(.*)$`))
		// JSON style: "key": "value" or "key": value — mask the value token,
		// keep quotes and trailing punctuation.
		r.keyRules = append(r.keyRules,
			regexp.MustCompile(`(?i)("`+k+`"\s*:\s*")([^"]*)(")`),
			regexp.MustCompile(`(?i)("`+k+`"\s*:\s*)([^",}\]\s][^,}\]]*)`))
	}
}

// Redact returns text with all configured key values and pattern matches
// replaced by the sentinel. Text containing no keys or patterns is
// returned unchanged.
func (r *Redactor) Redact(text string) string {
	r.once.Do(r.compileKeyRules)

	out := text
	for i := 0; i < len(r.keyRules); i += 3 {
		out = r.keyRules[i].ReplaceAllString(out, "${1}"+Sentinel)
		out = r.keyRules[i+1].ReplaceAllString(out, "${1}"+Sentinel+"${3}")
		out = r.keyRules[i+2].ReplaceAllString(out, "${1}"+Sentinel)
	}
	for _, re := range r.patterns {
		out = re.ReplaceAllString(out, Sentinel)
	}
	return out
}

// Keys returns the configured key names.
func (r *Redactor) Keys() []string {
	return r.keys
}
