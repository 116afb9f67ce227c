package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizi2000/agentzero-cli/internal/events"
	"github.com/vizi2000/agentzero-cli/internal/policy"
	"github.com/vizi2000/agentzero-cli/internal/security"
)

type fakeProvider struct {
	name      string
	available bool
	reply     string
	err       error
	calls     int
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func shellRequest(command string) events.ToolRequest {
	return events.ToolRequest{
		ToolName: "shell",
		Params:   map[string]any{"command": command},
	}
}

func TestRoute_RulesDecideKnownTools(t *testing.T) {
	r := NewRouter(Options{Mode: security.ModeBalanced})

	v := r.Route(context.Background(), events.ToolRequest{ToolName: "read_file"})
	assert.Equal(t, security.DecisionAuto, v.Decision)
	assert.Equal(t, "rules", v.Source)

	v = r.Route(context.Background(), events.ToolRequest{ToolName: "write_file"})
	assert.Equal(t, security.DecisionApprove, v.Decision)
}

func TestRoute_BlacklistBlockCarriesReason(t *testing.T) {
	r := NewRouter(Options{
		Mode:      security.ModeBalanced,
		Blacklist: []string{"rm -rf /"},
	})

	v := r.Route(context.Background(), shellRequest("sudo rm -rf / --no-preserve-root"))
	assert.Equal(t, security.DecisionBlock, v.Decision)
	assert.Contains(t, v.Reason, "rm -rf /")
}

func TestRoute_PolicyRulesAfterWhitelist(t *testing.T) {
	rules, err := policy.Parse("test.rules", `
prefix_rule(pattern=["git", ["status", "log"]])
prefix_rule(pattern=["shutdown"], decision="forbidden", justification="powers off the host")
`)
	require.NoError(t, err)

	r := NewRouter(Options{Mode: security.ModeBalanced, Rules: rules})

	v := r.Route(context.Background(), shellRequest("git status"))
	assert.Equal(t, security.DecisionAuto, v.Decision)
	assert.Equal(t, "policy", v.Source)

	v = r.Route(context.Background(), shellRequest("shutdown -h now"))
	assert.Equal(t, security.DecisionBlock, v.Decision)
	assert.Equal(t, "powers off the host", v.Reason)

	v = r.Route(context.Background(), shellRequest("cargo build"))
	assert.Equal(t, security.DecisionApprove, v.Decision)
	assert.Equal(t, "rules", v.Source)
}

func TestRoute_WhitelistWinsOverPolicy(t *testing.T) {
	rules, err := policy.Parse("test.rules", `
prefix_rule(pattern=["git"], decision="prompt")
`)
	require.NoError(t, err)

	r := NewRouter(Options{
		Mode:      security.ModeBalanced,
		Whitelist: []string{"git "},
		Rules:     rules,
	})

	v := r.Route(context.Background(), shellRequest("git push origin main"))
	assert.Equal(t, security.DecisionAuto, v.Decision)
	assert.Equal(t, "rules", v.Source)
}

func TestRoute_UnknownToolWithoutClassifierApproves(t *testing.T) {
	r := NewRouter(Options{Mode: security.ModeBalanced})

	v := r.Route(context.Background(), events.ToolRequest{ToolName: "deploy_to_prod"})
	assert.Equal(t, security.DecisionApprove, v.Decision)
	assert.Equal(t, "default", v.Source)
}

func TestRoute_ClassifierDecidesUnknownTool(t *testing.T) {
	provider := &fakeProvider{name: "fake", available: true, reply: "AUTO"}
	r := NewRouter(Options{
		Mode:              security.ModeBalanced,
		ClassifierEnabled: true,
		ProviderFactory:   func() Provider { return provider },
	})

	v := r.Route(context.Background(), events.ToolRequest{ToolName: "fetch_url"})
	assert.Equal(t, security.DecisionAuto, v.Decision)
	assert.Equal(t, "observer", v.Source)
	assert.Equal(t, 1, provider.calls)
}

func TestRoute_ClassifierNeverConsultedForKnownTools(t *testing.T) {
	factoryCalls := 0
	r := NewRouter(Options{
		Mode:              security.ModeBalanced,
		ClassifierEnabled: true,
		ProviderFactory: func() Provider {
			factoryCalls++
			return &fakeProvider{available: true, reply: "BLOCK"}
		},
	})

	r.Route(context.Background(), events.ToolRequest{ToolName: "read_file"})
	r.Route(context.Background(), events.ToolRequest{ToolName: "write_file"})
	assert.Zero(t, factoryCalls)
}

func TestRoute_ProviderFailureYieldsApprove(t *testing.T) {
	provider := &fakeProvider{name: "fake", available: true, err: errors.New("connection refused")}
	r := NewRouter(Options{
		Mode:              security.ModeBalanced,
		ClassifierEnabled: true,
		ProviderFactory:   func() Provider { return provider },
	})

	v := r.Route(context.Background(), events.ToolRequest{ToolName: "fetch_url"})
	assert.Equal(t, security.DecisionApprove, v.Decision)
}

func TestRoute_GodModeShortCircuits(t *testing.T) {
	r := NewRouter(Options{Mode: security.ModeGodMode, Blacklist: []string{"rm -rf /"}})

	v := r.Route(context.Background(), shellRequest("rm -rf / --no-preserve-root"))
	assert.Equal(t, security.DecisionAuto, v.Decision)
}

func TestParseDecision(t *testing.T) {
	cases := map[string]security.Decision{
		"AUTO":                         security.DecisionAuto,
		"auto":                         security.DecisionAuto,
		"The answer is AUTO.":          security.DecisionAuto,
		"BLOCK":                        security.DecisionBlock,
		"I would block this":           security.DecisionBlock,
		"APPROVE":                      security.DecisionApprove,
		"ask the user":                 security.DecisionApprove,
		"":                             security.DecisionApprove,
		"this needs automatic review?": security.DecisionAuto,
	}
	for reply, want := range cases {
		assert.Equal(t, want, parseDecision(reply), "reply %q", reply)
	}
}

func TestClassify_UnavailableProviderApproves(t *testing.T) {
	c := NewClassifier(&fakeProvider{available: false, reply: "BLOCK"}, nil)
	got := c.Classify(context.Background(), events.ToolRequest{ToolName: "x"})
	assert.Equal(t, security.DecisionApprove, got)
}
