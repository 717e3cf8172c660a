// Package expr implements the small, dependency-free expression language used
// by field visibility conditions.
//
// Supported forms:
//   - truthiness: `cuenta` (non-empty value)
//   - comparisons: `tipo == "tarjeta"`, `monto != 0`
//   - composition: `a == "x" && b != ""`, `a || b`, `!(a && b)`
//
// Identifiers resolve against the form's value store keyed by field id. A
// comparison against a checkbox-set value tests membership of the literal in
// the selected options.
package expr

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Eval evaluates a condition against the supplied values. An empty or
// whitespace-only rule is always true.
func Eval(rule string, values map[string]any) (bool, error) {
	node, err := parse(rule)
	if err != nil {
		return false, err
	}
	if node == nil {
		return true, nil
	}
	return node.eval(values)
}

// Refs returns the sorted, de-duplicated set of field ids the condition
// reads. Schema validation uses it to enforce the declaration-order rule.
func Refs(rule string) ([]string, error) {
	node, err := parse(rule)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, nil
	}
	seen := map[string]struct{}{}
	node.refs(seen)
	if len(seen) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func parse(rule string) (node, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	stream := &tokenStream{tokens: tokens}
	out, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return out, nil
}

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{tokenNeq, "!="})
				i += 2
			} else {
				tokens = append(tokens, token{tokenNot, "!"})
				i++
			}
		case ch == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("expr: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{tokenEq, "=="})
			i += 2
		case ch == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errors.New("expr: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{tokenAnd, "&&"})
			i += 2
		case ch == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errors.New("expr: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{tokenOr, "||"})
			i += 2
		case ch == '"' || ch == '\'':
			value, width, err := scanString(input[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tokenString, value})
			i += width
		default:
			start := i
			for i < len(input) && !strings.ContainsRune(" \t\n\r()!=&|", rune(input[i])) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{tokenBool, strings.ToLower(raw)})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{tokenNumber, raw})
				} else {
					tokens = append(tokens, token{tokenIdent, raw})
				}
			}
		}
	}
	return tokens, nil
}

func scanString(input string) (value string, width int, err error) {
	quote := input[0]
	var sb strings.Builder
	for i := 1; i < len(input); i++ {
		ch := input[i]
		switch ch {
		case '\\':
			if i+1 >= len(input) {
				return "", 0, errors.New("expr: dangling escape in string literal")
			}
			i++
			sb.WriteByte(input[i])
		case quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(ch)
		}
	}
	return "", 0, errors.New("expr: unterminated string literal")
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}

type node interface {
	eval(values map[string]any) (bool, error)
	refs(dest map[string]struct{})
}

type binaryNode struct {
	and         bool
	left, right node
}

func (n binaryNode) eval(values map[string]any) (bool, error) {
	ok, err := n.left.eval(values)
	if err != nil {
		return false, err
	}
	if n.and && !ok {
		return false, nil
	}
	if !n.and && ok {
		return true, nil
	}
	return n.right.eval(values)
}

func (n binaryNode) refs(dest map[string]struct{}) {
	n.left.refs(dest)
	n.right.refs(dest)
}

type notNode struct {
	inner node
}

func (n notNode) eval(values map[string]any) (bool, error) {
	ok, err := n.inner.eval(values)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n notNode) refs(dest map[string]struct{}) { n.inner.refs(dest) }

type compareNode struct {
	field   string
	negated bool
	literal token
}

func (n compareNode) eval(values map[string]any) (bool, error) {
	value := values[n.field]
	var matched bool
	switch n.literal.kind {
	case tokenString:
		matched = containsOrEquals(value, n.literal.raw)
	case tokenBool:
		matched = truthy(value) == (n.literal.raw == "true")
	case tokenNumber:
		want, err := strconv.ParseFloat(n.literal.raw, 64)
		if err != nil {
			return false, fmt.Errorf("expr: invalid number literal %q", n.literal.raw)
		}
		got, ok := coerceNumber(value)
		matched = ok && got == want
	default:
		return false, fmt.Errorf("expr: unsupported literal %q", n.literal.raw)
	}
	if n.negated {
		return !matched, nil
	}
	return matched, nil
}

func (n compareNode) refs(dest map[string]struct{}) { dest[n.field] = struct{}{} }

type truthyNode struct {
	field string
}

func (n truthyNode) eval(values map[string]any) (bool, error) {
	return truthy(values[n.field]), nil
}

func (n truthyNode) refs(dest map[string]struct{}) { dest[n.field] = struct{}{} }

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos < len(s.tokens) && s.tokens[s.pos].kind == kind {
		s.pos++
		return true
	}
	return false
}

func (s *tokenStream) next() (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func parseOr(s *tokenStream) (node, error) {
	left, err := parseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenOr) {
		right, err := parseAnd(s)
		if err != nil {
			return nil, err
		}
		left = binaryNode{and: false, left: left, right: right}
	}
	return left, nil
}

func parseAnd(s *tokenStream) (node, error) {
	left, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	for s.match(tokenAnd) {
		right, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		left = binaryNode{and: true, left: left, right: right}
	}
	return left, nil
}

func parseUnary(s *tokenStream) (node, error) {
	if s.match(tokenNot) {
		inner, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return parsePrimary(s)
}

func parsePrimary(s *tokenStream) (node, error) {
	if s.match(tokenLParen) {
		inner, err := parseOr(s)
		if err != nil {
			return nil, err
		}
		if !s.match(tokenRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}

	tok, ok := s.next()
	if !ok {
		return nil, errors.New("expr: empty expression")
	}
	if tok.kind != tokenIdent {
		return nil, fmt.Errorf("expr: expected field id, got %q", tok.raw)
	}

	negated := false
	switch {
	case s.match(tokenEq):
	case s.match(tokenNeq):
		negated = true
	default:
		return truthyNode{field: tok.raw}, nil
	}

	lit, ok := s.next()
	if !ok {
		return nil, errors.New("expr: missing literal after comparison")
	}
	if lit.kind == tokenIdent {
		// Bare words compare as strings to keep authored conditions forgiving.
		lit.kind = tokenString
	}
	return compareNode{field: tok.raw, negated: negated, literal: lit}, nil
}

// containsOrEquals compares scalars directly and treats list values (such as
// checkbox-set selections) as membership tests.
func containsOrEquals(value any, want string) bool {
	switch v := value.(type) {
	case nil:
		return want == ""
	case string:
		return v == want
	case []string:
		for _, item := range v {
			if item == want {
				return true
			}
		}
		return false
	case fmt.Stringer:
		return v.String() == want
	default:
		return fmt.Sprint(v) == want
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []string:
		return len(v) > 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case fmt.Stringer:
		return strings.TrimSpace(v.String()) != ""
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len() > 0
		}
		return true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
