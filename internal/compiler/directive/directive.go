// Package directive parses //tref: comment directives.
//
// A directive is a line comment of the form
//
//	//tref:<verb> [arg...] [key=value...]
//
// Arguments are separated by blanks. Blanks inside string literals and inside
// balanced (), [] and {} do not split, so metadata can be written as Go
// expressions:
//
//	//tref:field meta=Range{Min: 0, Max: 10}
//	//tref:method sig="func(int) error"
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

// Prefix starts every directive.
const Prefix = "//tref:"

// Verbs.
const (
	VerbType        = "type"
	VerbRoot        = "root"
	VerbSubtype     = "subtype"
	VerbExternal    = "external"
	VerbField       = "field"
	VerbMethod      = "method"
	VerbStatic      = "static"
	VerbMemberType  = "membertype"
	VerbEnum        = "enum"
	VerbItem        = "item"
	VerbInstantiate = "instantiate"
)

var knownVerbs = map[string]bool{
	VerbType:        true,
	VerbRoot:        true,
	VerbSubtype:     true,
	VerbExternal:    true,
	VerbField:       true,
	VerbMethod:      true,
	VerbStatic:      true,
	VerbMemberType:  true,
	VerbEnum:        true,
	VerbItem:        true,
	VerbInstantiate: true,
}

// exprParams hold Go expressions and are kept verbatim, quotes included.
var exprParams = map[string]bool{
	"meta": true,
}

// IsKnownVerb reports whether v is a directive verb.
func IsKnownVerb(v string) bool {
	return knownVerbs[v]
}

// Directive is one parsed directive.
type Directive struct {
	Verb   string
	Args   []string
	Params map[string]string
	// Pos is the position of the comment; zero when parsed from text.
	Pos token.Pos
	Raw string
}

// Param returns the value of key.
func (d *Directive) Param(key string) (string, bool) {
	v, ok := d.Params[key]
	return v, ok
}

// ParamOr returns the value of key or def.
func (d *Directive) ParamOr(key, def string) string {
	if v, ok := d.Params[key]; ok {
		return v
	}
	return def
}

// Arg returns the i-th positional argument or "".
func (d *Directive) Arg(i int) string {
	if i < 0 || i >= len(d.Args) {
		return ""
	}
	return d.Args[i]
}

// HasFlag reports whether a bare word appears among the arguments.
func (d *Directive) HasFlag(flag string) bool {
	for _, a := range d.Args {
		if a == flag {
			return true
		}
	}
	return false
}

func (d *Directive) String() string {
	return d.Raw
}

// Error is a directive syntax error.
type Error struct {
	Pos token.Pos
	Raw string
	Msg string
	// UnknownVerb is set when the only problem is the verb.
	UnknownVerb bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Raw, e.Msg)
}

// IsDirective reports whether a comment's text is a tref directive.
func IsDirective(text string) bool {
	return strings.HasPrefix(text, Prefix)
}

// Parse parses the text of one comment, including the leading //tref:.
func Parse(text string) (*Directive, error) {
	raw := strings.TrimSpace(text)
	if !IsDirective(raw) {
		return nil, &Error{Raw: raw, Msg: "not a tref directive"}
	}

	body := strings.TrimPrefix(raw, Prefix)
	tokens, err := tokenize(body)
	if err != nil {
		return nil, &Error{Raw: raw, Msg: err.Error()}
	}
	if len(tokens) == 0 {
		return nil, &Error{Raw: raw, Msg: "missing verb"}
	}

	d := &Directive{
		Verb:   tokens[0],
		Params: make(map[string]string),
		Raw:    raw,
	}
	if !knownVerbs[d.Verb] {
		return nil, &Error{Raw: raw, Msg: fmt.Sprintf("unknown verb %q", d.Verb), UnknownVerb: true}
	}

	for _, tok := range tokens[1:] {
		key, value, isParam := splitParam(tok)
		if !isParam {
			d.Args = append(d.Args, tok)
			continue
		}
		if value == "" {
			return nil, &Error{Raw: raw, Msg: fmt.Sprintf("empty value for %q", key)}
		}
		if _, dup := d.Params[key]; dup {
			return nil, &Error{Raw: raw, Msg: fmt.Sprintf("%q given twice", key)}
		}
		if exprParams[key] {
			d.Params[key] = value
			continue
		}
		unquoted, err := unquote(value)
		if err != nil {
			return nil, &Error{Raw: raw, Msg: fmt.Sprintf("bad string for %q: %v", key, err)}
		}
		d.Params[key] = unquoted
	}

	for i, a := range d.Args {
		unquoted, err := unquote(a)
		if err != nil {
			return nil, &Error{Raw: raw, Msg: fmt.Sprintf("bad string %s: %v", a, err)}
		}
		d.Args[i] = unquoted
	}
	return d, nil
}

// Scan parses every directive found in the comment groups, in source order.
// Comments that are not directives are skipped.
func Scan(groups ...*ast.CommentGroup) ([]*Directive, []*Error) {
	var out []*Directive
	var errs []*Error
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			if !IsDirective(c.Text) {
				continue
			}
			d, err := Parse(c.Text)
			if err != nil {
				e := err.(*Error)
				e.Pos = c.Slash
				errs = append(errs, e)
				continue
			}
			d.Pos = c.Slash
			out = append(out, d)
		}
	}
	return out, errs
}

// splitParam recognizes key=value where key is an identifier. A '=' that
// appears after a quote or bracket belongs to an expression, not a key.
func splitParam(tok string) (key, value string, ok bool) {
	i := strings.IndexByte(tok, '=')
	if i <= 0 {
		return "", "", false
	}
	key = tok[:i]
	for j, r := range key {
		isLetter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !(isDigit && j > 0) {
			return "", "", false
		}
	}
	return key, tok[i+1:], true
}

func unquote(s string) (string, error) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '`') && s[len(s)-1] == s[0] {
		return strconv.Unquote(s)
	}
	return s, nil
}

// tokenize splits on blanks outside of string literals and brackets.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	var stack []byte
	var quote byte

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if quote != 0 {
			cur.WriteByte(ch)
			switch {
			case ch == '\\' && quote != '`' && i+1 < len(s):
				i++
				cur.WriteByte(s[i])
			case ch == quote:
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '`', '\'':
			quote = ch
			cur.WriteByte(ch)
		case '(', '[', '{':
			stack = append(stack, closerOf(ch))
			cur.WriteByte(ch)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return nil, fmt.Errorf("unbalanced %q at offset %d", ch, i)
			}
			stack = stack[:len(stack)-1]
			cur.WriteByte(ch)
		case ' ', '\t':
			if len(stack) > 0 {
				cur.WriteByte(ch)
			} else {
				flush()
			}
		default:
			cur.WriteByte(ch)
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c literal", quote)
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("missing %q", stack[len(stack)-1])
	}
	flush()
	return tokens, nil
}

func closerOf(ch byte) byte {
	switch ch {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}
