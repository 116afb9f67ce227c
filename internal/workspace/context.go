package workspace

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vizi2000/agentzero-cli/internal/redact"
)

// previewByteCap bounds how much of a single file is read into a preview.
const previewByteCap = 8 * 1024

// ContextBuilder assembles the workspace context bundle sent alongside
// prompts to a remote backend. Both secrecy gates apply before anything
// leaves the machine: the sensitive-filename deny-list skips whole files,
// and the redactor scrubs the content of those that remain.
type ContextBuilder struct {
	resolver     *Resolver
	redactor     *redact.Redactor
	previewFiles []string
}

// NewContextBuilder creates a builder over the given resolver.
// previewFiles lists workspace-relative candidates for inclusion;
// redactor may be nil, which disables content scrubbing (used in tests
// only — production config always supplies one).
func NewContextBuilder(resolver *Resolver, redactor *redact.Redactor, previewFiles []string) *ContextBuilder {
	return &ContextBuilder{
		resolver:     resolver,
		redactor:     redactor,
		previewFiles: previewFiles,
	}
}

// SelectPreviewFiles filters candidates down to the ones that may be
// previewed: configured, not matching the sensitive-filename deny-list.
func (b *ContextBuilder) SelectPreviewFiles(candidates []string) []string {
	configured := make(map[string]bool, len(b.previewFiles))
	for _, f := range b.previewFiles {
		configured[f] = true
	}

	var selected []string
	for _, c := range candidates {
		if !configured[c] {
			continue
		}
		if IsSensitiveFile(c) {
			continue
		}
		selected = append(selected, c)
	}
	return selected
}

// ReadPreview reads a workspace-relative file capped at previewByteCap and
// returns its redacted content. Returns ok=false when the file cannot be
// resolved or read; previews are best-effort and never abort a turn.
func (b *ContextBuilder) ReadPreview(relPath string) (string, bool) {
	abs, err := b.resolver.Resolve(relPath)
	if err != nil {
		return "", false
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", false
	}
	defer f.Close()

	content, err := readCapped(f)
	if err != nil {
		return "", false
	}

	if b.redactor != nil {
		content = b.redactor.Redact(content)
	}
	return content, true
}

// readCapped reads up to previewByteCap bytes plus one probe byte to
// detect truncation. io.ReadFull keeps reading through short reads, so a
// preview is never silently partial.
func readCapped(r io.Reader) (string, error) {
	buf := make([]byte, previewByteCap+1)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	content := string(buf[:n])
	if n > previewByteCap {
		content = content[:previewByteCap] + "\n... (truncated)"
	}
	return content, nil
}

// Build assembles the outbound context text: one section per selected
// preview file, each already filtered and redacted. Returns the empty
// string when nothing is includable.
func (b *ContextBuilder) Build() string {
	selected := b.SelectPreviewFiles(b.previewFiles)
	if len(selected) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, rel := range selected {
		content, ok := b.ReadPreview(rel)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "=== %s ===\n%s\n", rel, content)
	}
	return strings.TrimRight(sb.String(), "\n")
}
