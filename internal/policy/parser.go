package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
)

// ParseError reports a failure parsing a rules file.
type ParseError struct {
	File    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Parse evaluates a Starlark rules source and returns the declared policy.
// The only builtin exposed is prefix_rule(pattern, decision?, justification?).
func Parse(filename, source string) (*Policy, error) {
	p := NewPolicy()

	prefixRule := starlark.NewBuiltin("prefix_rule", func(
		thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple,
	) (starlark.Value, error) {
		var (
			patternVal    *starlark.List
			decisionStr   string
			justification string
		)
		if err := starlark.UnpackArgs(fn.Name(), args, kwargs,
			"pattern", &patternVal,
			"decision?", &decisionStr,
			"justification?", &justification,
		); err != nil {
			return nil, err
		}

		if decisionStr == "" {
			decisionStr = "allow"
		}
		decision, err := ParseRuleDecision(decisionStr)
		if err != nil {
			return nil, err
		}

		pattern, err := patternFromStarlark(patternVal)
		if err != nil {
			return nil, err
		}
		if len(pattern) == 0 {
			return nil, fmt.Errorf("prefix_rule pattern must not be empty")
		}

		p.Add(&PrefixRule{
			Pattern:       pattern,
			Decision:      decision,
			Justification: justification,
		})
		return starlark.None, nil
	})

	thread := &starlark.Thread{Name: filename}
	globals := starlark.StringDict{"prefix_rule": prefixRule}
	if _, err := starlark.ExecFile(thread, filename, source, globals); err != nil {
		return nil, &ParseError{File: filename, Message: err.Error(), Cause: err}
	}
	return p, nil
}

// patternFromStarlark converts a Starlark list into a PrefixPattern.
// Elements are strings (exact match) or lists of strings (alternatives).
func patternFromStarlark(list *starlark.List) (PrefixPattern, error) {
	if list == nil {
		return nil, fmt.Errorf("pattern must be a list")
	}
	var pattern PrefixPattern
	for i := 0; i < list.Len(); i++ {
		switch v := list.Index(i).(type) {
		case starlark.String:
			pattern = append(pattern, PatternToken{Single: string(v)})
		case *starlark.List:
			var alts []string
			for j := 0; j < v.Len(); j++ {
				s, ok := v.Index(j).(starlark.String)
				if !ok {
					return nil, fmt.Errorf("pattern alternatives must be strings, got %s", v.Index(j).Type())
				}
				alts = append(alts, string(s))
			}
			if len(alts) == 0 {
				return nil, fmt.Errorf("pattern alternative set must not be empty")
			}
			pattern = append(pattern, PatternToken{Alts: alts})
		default:
			return nil, fmt.Errorf("pattern elements must be strings or lists of strings, got %s", v.Type())
		}
	}
	return pattern, nil
}

// LoadDir parses every *.rules file in dir into one merged policy.
// A missing directory yields an empty policy.
func LoadDir(dir string) (*Policy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return NewPolicy(), nil
		}
		return nil, err
	}

	merged := NewPolicy()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".rules") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		p, err := Parse(path, string(data))
		if err != nil {
			return nil, err
		}
		merged.Merge(p)
	}
	return merged, nil
}
