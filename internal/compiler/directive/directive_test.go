package directive

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		verb   string
		args   []string
		params map[string]string
	}{
		{
			name:   "bare verb",
			input:  "//tref:type",
			verb:   "type",
			params: map[string]string{},
		},
		{
			name:   "meta struct literal keeps spaces",
			input:  "//tref:field meta=Range{Min: 0, Max: 10}",
			verb:   "field",
			params: map[string]string{"meta": "Range{Min: 0, Max: 10}"},
		},
		{
			name:   "quoted signature is unquoted",
			input:  `//tref:method name=Run sig="func(int) error"`,
			verb:   "method",
			params: map[string]string{"name": "Run", "sig": "func(int) error"},
		},
		{
			name:   "string metadata stays a literal",
			input:  `//tref:field meta="a b"`,
			verb:   "field",
			params: map[string]string{"meta": `"a b"`},
		},
		{
			name:   "positional args and flags",
			input:  "//tref:external SubChild base=Child subtype",
			verb:   "external",
			args:   []string{"SubChild", "subtype"},
			params: map[string]string{"base": "Child"},
		},
		{
			name:   "instantiate list",
			input:  `//tref:instantiate int "map[string]int"`,
			verb:   "instantiate",
			args:   []string{"int", "map[string]int"},
			params: map[string]string{},
		},
		{
			name:   "parenthesized expression",
			input:  "//tref:item meta=(1 << 3)",
			verb:   "item",
			params: map[string]string{"meta": "(1 << 3)"},
		},
		{
			name:   "comparison inside parens is not a key",
			input:  "//tref:field meta=(a == b)",
			verb:   "field",
			params: map[string]string{"meta": "(a == b)"},
		},
		{
			name:   "tabs and extra spaces",
			input:  "//tref:membertype \t Inner   name=Kind ",
			verb:   "membertype",
			args:   []string{"Inner"},
			params: map[string]string{"name": "Kind"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.verb, d.Verb)
			assert.Equal(t, tt.args, d.Args)
			assert.Equal(t, tt.params, d.Params)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contains    string
		unknownVerb bool
	}{
		{"not a directive", "// tref:type", "not a tref directive", false},
		{"missing verb", "//tref:", "missing verb", false},
		{"unknown verb", "//tref:klass", `unknown verb "klass"`, true},
		{"unterminated string", `//tref:method sig="func(`, "unterminated", false},
		{"unbalanced close", "//tref:field meta=Range}", "unbalanced", false},
		{"unclosed bracket", "//tref:field meta=Range{Min: 1", "missing", false},
		{"empty value", "//tref:field meta=", "empty value", false},
		{"duplicate key", "//tref:field name=a name=b", "given twice", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			var derr *Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, tt.unknownVerb, derr.UnknownVerb)
		})
	}
}

func TestDirective_Accessors(t *testing.T) {
	d, err := Parse("//tref:external Target root name=T")
	require.NoError(t, err)

	assert.Equal(t, "Target", d.Arg(0))
	assert.Equal(t, "", d.Arg(5))
	assert.True(t, d.HasFlag("root"))
	assert.False(t, d.HasFlag("subtype"))
	assert.Equal(t, "T", d.ParamOr("name", "x"))
	assert.Equal(t, "x", d.ParamOr("meta", "x"))
	_, ok := d.Param("meta")
	assert.False(t, ok)
	assert.Equal(t, "//tref:external Target root name=T", d.String())
}

func TestScan(t *testing.T) {
	src := `package p

// Shape is documented.
//tref:type meta=1
//tref:bogus
type Shape struct {
	//tref:field
	x int // trailing
}
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	require.NoError(t, err)

	dirs, errs := Scan(file.Comments...)
	require.Len(t, dirs, 2)
	require.Len(t, errs, 1)

	assert.Equal(t, "type", dirs[0].Verb)
	assert.Equal(t, 4, fset.Position(dirs[0].Pos).Line)
	assert.Equal(t, "field", dirs[1].Verb)
	assert.Equal(t, 7, fset.Position(dirs[1].Pos).Line)

	assert.True(t, errs[0].UnknownVerb)
	assert.Equal(t, 5, fset.Position(errs[0].Pos).Line)
}
