package policy

import "strings"

// SplitCommands parses a shell command line into argv lists, accepting
// only word-only commands joined by &&, ||, ; and |. Anything the scanner
// cannot vouch for — redirections, subshells, expansions, command
// substitution, background jobs — yields nil, and the caller must treat
// the command as unmatched rather than guess.
func SplitCommands(command string) [][]string {
	s := &splitter{src: command}
	return s.parse()
}

type splitter struct {
	src string
	pos int
}

func (s *splitter) parse() [][]string {
	var commands [][]string
	var current []string
	pending := false // an operator was seen, a command must follow

	for s.pos < len(s.src) {
		s.skipSpace()
		if s.pos >= len(s.src) {
			break
		}

		switch ch := s.src[s.pos]; ch {
		case '#':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
			continue
		case '>', '<', '(', ')', '`', '$':
			return nil
		case '&':
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '&' {
				if len(current) == 0 {
					return nil
				}
				commands = append(commands, current)
				current = nil
				pending = true
				s.pos += 2
				continue
			}
			return nil // background job
		case '|':
			if len(current) == 0 {
				return nil
			}
			commands = append(commands, current)
			current = nil
			pending = true
			if s.pos+1 < len(s.src) && s.src[s.pos+1] == '|' {
				s.pos += 2
			} else {
				s.pos++
			}
			continue
		case ';', '\n':
			if len(current) == 0 {
				return nil
			}
			commands = append(commands, current)
			current = nil
			pending = true
			s.pos++
			continue
		}

		word, ok := s.parseWord()
		if !ok {
			return nil
		}
		// FOO=bar prefixes change the environment under the matched
		// program's feet; refuse to classify them.
		if len(current) == 0 && strings.Contains(word, "=") {
			return nil
		}
		current = append(current, word)
		pending = false
	}

	if len(current) > 0 {
		commands = append(commands, current)
	} else if pending {
		return nil // trailing operator with no command
	}

	if len(commands) == 0 {
		return nil
	}
	return commands
}

func (s *splitter) skipSpace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

// parseWord consumes one word, handling single and double quotes.
// Double-quoted segments may not contain expansions.
func (s *splitter) parseWord() (string, bool) {
	var sb strings.Builder
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == ';' || ch == '|' || ch == '&' {
			break
		}
		switch ch {
		case '\'':
			s.pos++
			start := s.pos
			for s.pos < len(s.src) && s.src[s.pos] != '\'' {
				s.pos++
			}
			if s.pos >= len(s.src) {
				return "", false // unterminated
			}
			sb.WriteString(s.src[start:s.pos])
			s.pos++
		case '"':
			s.pos++
			start := s.pos
			for s.pos < len(s.src) && s.src[s.pos] != '"' {
				if c := s.src[s.pos]; c == '$' || c == '`' || c == '\\' {
					return "", false
				}
				s.pos++
			}
			if s.pos >= len(s.src) {
				return "", false
			}
			sb.WriteString(s.src[start:s.pos])
			s.pos++
		case '>', '<', '(', ')', '`', '$', '\\':
			return "", false
		default:
			sb.WriteByte(ch)
			s.pos++
		}
	}
	if sb.Len() == 0 {
		return "", false
	}
	return sb.String(), true
}
