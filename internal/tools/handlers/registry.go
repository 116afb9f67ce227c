package handlers

import (
	"time"

	"github.com/vizi2000/agentzero-cli/internal/tools"
	"github.com/vizi2000/agentzero-cli/internal/workspace"
)

// Limits bounds handler resource usage.
type Limits struct {
	ShellTimeout       time.Duration
	MaxOutputChars     int
	ReadMaxBytes       int
	ListMaxDepth       int
	ListMaxFiles       int
	SearchMaxResults   int
	SearchMaxFileBytes int64
	IgnoreDirs         []string
}

// NewRegistry builds the standard tool registry rooted at the given
// workspace. Each handler is registered under its canonical name plus
// the aliases backends are known to use.
func NewRegistry(resolver *workspace.Resolver, limits Limits) *tools.Registry {
	r := tools.NewRegistry()
	r.Register(NewShellHandler(resolver.Root(), limits.ShellTimeout, limits.MaxOutputChars),
		"terminal", "command")
	r.Register(NewReadFileHandler(resolver, limits.ReadMaxBytes), "read")
	r.Register(NewWriteFileHandler(resolver), "file_write")
	r.Register(NewListFilesHandler(resolver, limits.ListMaxDepth, limits.ListMaxFiles, limits.IgnoreDirs),
		"tree", "ls")
	r.Register(NewSearchTextHandler(resolver, limits.SearchMaxResults, limits.SearchMaxFileBytes, limits.IgnoreDirs),
		"search", "rg")
	r.Register(NewReplaceTextHandler(resolver), "replace")
	r.Register(NewApplyPatchHandler(resolver), "patch")
	return r
}
