package slug_test

import (
	"strings"
	"testing"

	"github.com/kiranshivaraju/unionhome/internal/slug"
	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"hyphen and digits", "abc-123", true},
		{"min length", "ab", true},
		{"too short", "a", false},
		{"empty", "", false},
		{"disallowed bang", "My_Slug!", false},
		{"mixed case underscore", "My_Slug", true},
		{"max length", strings.Repeat("a", 50), true},
		{"over max length", strings.Repeat("a", 51), false},
		{"dot", "a.b", false},
		{"slash", "ab/cd", false},
		{"space", "ab cd", false},
		{"hangul", "노조", false},
		{"trailing newline", "abc\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Valid(tt.in))
		})
	}
}

func TestValidLowercase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"lowercase", "demo-union", true},
		{"min length", "ab", true},
		{"too short", "a", false},
		{"uppercase", "Demo", false},
		{"underscore", "demo_union", false},
		{"long", strings.Repeat("a", 80), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.ValidLowercase(tt.in))
		})
	}
}

func TestRules_Diverge(t *testing.T) {
	// The two rules are deliberately not unified.
	assert.True(t, slug.Valid("Union_A"))
	assert.False(t, slug.ValidLowercase("Union_A"))

	long := strings.Repeat("b", 60)
	assert.False(t, slug.Valid(long))
	assert.True(t, slug.ValidLowercase(long))
}
