package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRepairScenarios covers the nine concrete scenarios from the design
// document this package implements.
func TestRepairScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unquoted key and single-quoted value", `{name: 'John'}`, `{"name": "John"}`},
		{"trailing comma in array", `[1, 2, 3,]`, `[1, 2, 3]`},
		{"ndjson", "{\"a\": 1}\n{\"a\": 2}", "[\n{\"a\": 1},\n{\"a\": 2}\n]"},
		{"truncated string", `{"msg": "hello`, `{"msg": "hello"}`},
		{"mongo wrapper with comment", `/* c */ {"x": NumberLong("42")}`, `{"x": "42"}`},
		{"jsonp callback and python bool", `callback({"ok":True});`, `{"ok":true}`},
		{"string concatenation", `"a" + "b"`, `"ab"`},
		{"leading zero quoted", `{"n": 00789}`, `{"n": "00789"}`},
		{"truncated float fabricates trailing zero", `["x", 1.]`, `["x", 1.0]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Repair(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepairBoundaryBehaviors(t *testing.T) {
	t.Run("empty input fails UnexpectedEnd", func(t *testing.T) {
		_, err := Repair("")
		assertKind(t, err, KindUnexpectedEnd)
	})

	t.Run("whitespace-only input fails UnexpectedEnd", func(t *testing.T) {
		_, err := Repair("   \n\t  ")
		assertKind(t, err, KindUnexpectedEnd)
	})

	t.Run("single trailing comma after valid value is stripped", func(t *testing.T) {
		got, err := Repair(`{"a": 1},`)
		require.NoError(t, err)
		assert.Equal(t, `{"a": 1}`, got)
	})

	t.Run("deeply nested input succeeds", func(t *testing.T) {
		input := ""
		for i := 0; i < 150; i++ {
			input += "["
		}
		input += "1"
		for i := 0; i < 150; i++ {
			input += "]"
		}
		got, err := Repair(input)
		require.NoError(t, err)
		assert.NotEmpty(t, got)
	})

	t.Run("deeply nested input fails gracefully under a depth cap", func(t *testing.T) {
		input := ""
		for i := 0; i < 150; i++ {
			input += "["
		}
		input += "1"
		_, err := Repair(input, WithMaxDepth(10))
		assertKind(t, err, KindBufferExceeded)
	})
}

func TestRepairIdempotence(t *testing.T) {
	inputs := []string{
		`{name: 'John'}`,
		`[1, 2, 3,]`,
		`{"msg": "hello`,
		`callback({"ok":True});`,
		`"a" + "b"`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			once, err := Repair(in)
			require.NoError(t, err)
			twice, err := Repair(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestRepairAlreadyValidRoundTrips(t *testing.T) {
	inputs := []string{
		`{"a":1,"b":[1,2,3]}`,
		`null`,
		`"plain string"`,
		`42`,
		`-1.5e10`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, err := Repair(in)
			require.NoError(t, err)
			assert.Equal(t, in, got)
		})
	}
}

func TestRepairSpecialWhitespaceNormalized(t *testing.T) {
	input := "{\"a\":" + string(rune(runeNBSP)) + "1}"
	got, err := Repair(input)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestRepairMissingStructuralCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing colon", `{"a" 1}`, `{"a": 1}`},
		{"missing comma between keys", `{"a": 1 "b": 2}`, `{"a": 1, "b": 2}`},
		{"missing closing brace", `{"a": 1`, `{"a": 1}`},
		{"missing closing bracket", `[1, 2`, `[1, 2]`},
		{"leading comma in object", `{,"a": 1}`, `{"a": 1}`},
		{"leading comma in array", `[,1, 2]`, `[1, 2]`},
		{"stray closing brackets", `{"a": 1}}]`, `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Repair(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepairEllipsisTolerated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ellipsis in array with trailing comma", `[1, 2, ..., 3]`, `[1,2,3]`},
		{"ellipsis in object", `{"a": 1, ..., "b": 2}`, `{"a":1,"b":2}`},
		{"ellipsis at end of array", `[1, 2, ...]`, `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Repair(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stripASCIIWhitespace(got))

			_, err = Repair(got)
			assert.NoError(t, err, "repaired output %q must itself be repairable", got)
		})
	}
}

func stripASCIIWhitespace(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	require.Error(t, err)
	repairErr, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T (%v)", err, err)
	assert.Equal(t, want, repairErr.Kind)
}
