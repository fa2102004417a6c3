package depfile

import (
	"fmt"
	"regexp"
	"strings"
)

var varNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParseLine parses a single declaration line. Blank and comment lines return
// (nil, nil). pkg is the package of the declaring component and is used to
// complete bare component names.
func ParseLine(line, pkg string, vocab Vocabulary) (*Directive, error) {
	text := strings.TrimSpace(line)
	if text == "" || strings.HasPrefix(text, "#") {
		return nil, nil
	}
	if isAssignment(text) {
		return parseAssignment(text)
	}

	tokens, err := splitFields(text)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	kind, ok := LookupKind(tokens[0])
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, tokens[0])
	}
	if vocab == nil {
		vocab = Permissive()
	}

	d := &Directive{Kind: kind}
	var args []string
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		if len(tok) < 2 || tok[0] != '-' {
			args = append(args, tok)
			continue
		}
		name, value, inline := strings.Cut(tok, "=")
		spec, ok := flagsByAlias[name]
		if !ok {
			return nil, fmt.Errorf("%w %s", ErrUnknownFlag, name)
		}
		if !vocab.Allows(kind, spec.flag) {
			return nil, fmt.Errorf("%w: %s on %s", ErrFlagNotAllowed, name, kind)
		}
		if spec.takesArg && !inline {
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%w for %s", ErrMissingValue, name)
			}
			i++
			value = tokens[i]
		} else if !spec.takesArg && inline {
			return nil, fmt.Errorf("%s takes no value", name)
		}
		if spec.takesArg && strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w for %s", ErrMissingValue, name)
		}
		if err := spec.applyFunc(d, value, pkg); err != nil {
			return nil, err
		}
	}

	if kind == KindInclude {
		return finishInclude(d, args, pkg)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrMissingPath, kind)
	}
	d.Paths = args
	return d, nil
}

func finishInclude(d *Directive, args []string, pkg string) (*Directive, error) {
	if d.Target.IsZero() {
		if len(args) == 0 {
			return nil, fmt.Errorf("%w: include needs <package>:<component>", ErrMissingPath)
		}
		ref, err := ParseComponentRef(args[0], pkg)
		if err != nil {
			return nil, err
		}
		d.Target = ref
		args = args[1:]
	}
	switch len(args) {
	case 0:
	case 1:
		d.DepFile = args[0]
	default:
		return nil, fmt.Errorf("%w for include: %s", ErrTooManyArgs, strings.Join(args, " "))
	}
	return d, nil
}

// isAssignment recognises `name=value`, `name = value` and `@name = value`.
func isAssignment(text string) bool {
	if strings.HasPrefix(text, "@") {
		return true
	}
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return false
	}
	head := strings.TrimSpace(text[:eq])
	return head != "" && !strings.ContainsAny(head, " \t")
}

func parseAssignment(text string) (*Directive, error) {
	name, value, found := strings.Cut(strings.TrimPrefix(text, "@"), "=")
	if !found {
		return nil, fmt.Errorf("%w: %q has no '='", ErrBadVariable, text)
	}
	name = strings.TrimSpace(name)
	if !varNamePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: bad name %q", ErrBadVariable, name)
	}
	value = stripComment(strings.TrimSpace(value))
	if unquoted, ok := unquote(value); ok {
		value = unquoted
	}
	return &Directive{Kind: KindVar, Name: name, Value: value}, nil
}

// splitFields tokenizes on whitespace honoring single and double quotes and
// drops a trailing `# comment` that starts outside quotes.
func splitFields(text string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		inToken bool
	)
	for i, r := range text {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		case r == '#' && !inToken && (i == 0 || text[i-1] == ' ' || text[i-1] == '\t'):
			return tokens, nil
		default:
			current.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}

func stripComment(value string) string {
	var quote byte
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#' && (i == 0 || value[i-1] == ' ' || value[i-1] == '\t'):
			return strings.TrimSpace(value[:i])
		}
	}
	return value
}

func unquote(value string) (string, bool) {
	if len(value) < 2 {
		return "", false
	}
	first, last := value[0], value[len(value)-1]
	if (first == '"' || first == '\'') && first == last {
		return value[1 : len(value)-1], true
	}
	return "", false
}
