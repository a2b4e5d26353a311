package resolve

import (
	"strings"

	"github.com/vk/braceval/internal/access"
	"github.com/vk/braceval/internal/vars"
)

type stepKind int

const (
	stepMember stepKind = iota
	stepIndex
)

// pathStep is one segment of a direct-access expression. The first step is
// always a member step holding the root name.
type pathStep struct {
	kind stepKind
	text string
}

// parsePath recognizes expressions that are syntactically a bare
// identifier, a property chain, or an indexer access: ident(.ident|[key])*.
// Reserved words are not paths; neither is anything with operators, calls,
// or literals in it.
func parsePath(expr string) ([]pathStep, bool) {
	expr = strings.TrimSpace(expr)
	root, rest := takeIdent(expr)
	if root == "" || isKeyword(root) {
		return nil, false
	}

	steps := []pathStep{{kind: stepMember, text: root}}
	for rest != "" {
		switch rest[0] {
		case '.':
			name, after := takeIdent(rest[1:])
			if name == "" {
				return nil, false
			}
			steps = append(steps, pathStep{kind: stepMember, text: name})
			rest = after
		case '[':
			key, after, ok := takeBracket(rest)
			if !ok {
				return nil, false
			}
			steps = append(steps, pathStep{kind: stepIndex, text: key})
			rest = after
		default:
			return nil, false
		}
	}
	return steps, true
}

// walkPath resolves a parsed path one step at a time, short-circuiting the
// moment any segment is absent.
func walkPath(steps []pathStep, vc *vars.Context) (any, bool) {
	cur, ok := vc.Lookup(steps[0].text)
	if !ok {
		return nil, false
	}
	for _, s := range steps[1:] {
		switch s.kind {
		case stepMember:
			cur, ok = access.Member(cur, s.text)
		case stepIndex:
			cur, ok = access.Index(cur, s.text)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// takeIdent splits a leading identifier off s.
func takeIdent(s string) (ident, rest string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}

// takeBracket splits a leading [key] off s, honoring quoted keys.
func takeBracket(s string) (key, rest string, ok bool) {
	var quote byte
	for i := 1; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case ']':
			return s[1:i], s[i+1:], true
		case '[':
			return "", "", false
		}
	}
	return "", "", false
}
