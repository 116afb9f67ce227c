package observer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/policy"
	"github.com/vizi2000/agentzero-cli/internal/security"
)

// Verdict is a routing outcome with its provenance.
type Verdict struct {
	Decision security.Decision
	// Reason explains block and non-default outcomes to the user.
	Reason string
	// Source names the layer that decided: "rules", "policy", "observer"
	// or "default".
	Source string
}

// Options configures a Router.
type Options struct {
	Mode      security.Mode
	Whitelist []string
	Blacklist []string
	// Rules holds user prefix rules consulted for shell commands that the
	// whitelist and blacklist leave at approve. May be nil.
	Rules *policy.Policy
	// ClassifierEnabled refers undecided requests to the LLM classifier.
	ClassifierEnabled bool
	// ProviderFactory builds the classifier provider on first use. May
	// return nil when no provider is configured.
	ProviderFactory func() Provider
	Logger          *slog.Logger
}

// Router turns tool requests into verdicts. The rule layer is consulted
// first, then user prefix rules for shell commands, then the optional
// LLM classifier for requests the rules do not recognize.
type Router struct {
	opts   Options
	logger *slog.Logger

	initOnce   sync.Once
	classifier *Classifier
}

// NewRouter builds a router. The classifier provider is not constructed
// until the first request actually needs it.
func NewRouter(opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{opts: opts, logger: logger}
}

// SetMode changes the security mode for subsequent requests.
func (r *Router) SetMode(mode security.Mode) {
	r.opts.Mode = mode
}

// Mode returns the current security mode.
func (r *Router) Mode() security.Mode {
	return r.opts.Mode
}

// Route decides what to do with one tool request.
func (r *Router) Route(ctx context.Context, req events.ToolRequest) Verdict {
	decision, decided := security.RouteByRules(
		req.ToolName, req.Params, r.opts.Mode, r.opts.Whitelist, r.opts.Blacklist)

	if decided {
		verdict := Verdict{Decision: decision, Source: "rules"}
		if decision == security.DecisionBlock {
			if pattern := security.MatchedBlacklistPattern(req.Command(), r.opts.Blacklist); pattern != "" {
				verdict.Reason = fmt.Sprintf("command matches blacklisted pattern %q", pattern)
			}
			return verdict
		}
		// Shell commands left at approve get one more chance from the
		// user's prefix rules.
		if decision == security.DecisionApprove &&
			security.IsShellTool(req.ToolName) &&
			r.opts.Mode == security.ModeBalanced &&
			r.opts.Rules != nil {
			if eval := r.opts.Rules.CheckCommandLine(req.Command()); eval.Matched {
				return Verdict{
					Decision: eval.Decision,
					Reason:   eval.Justification,
					Source:   "policy",
				}
			}
		}
		return verdict
	}

	if r.opts.ClassifierEnabled {
		if c := r.classifierInstance(); c != nil {
			return Verdict{Decision: c.Classify(ctx, req), Source: "observer"}
		}
	}
	return Verdict{Decision: security.DecisionApprove, Source: "default"}
}

func (r *Router) classifierInstance() *Classifier {
	r.initOnce.Do(func() {
		if r.opts.ProviderFactory == nil {
			return
		}
		provider := r.opts.ProviderFactory()
		if provider == nil {
			r.logger.Debug("no observer provider configured")
			return
		}
		r.logger.Debug("observer provider initialized", "provider", provider.Name())
		r.classifier = NewClassifier(provider, r.logger)
	})
	return r.classifier
}
