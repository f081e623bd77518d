package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSimilarity(t *testing.T) {
	cases := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical", "Hello World", "Hello World", 1},
		{"empty b", "Hello", "", 0},
		{"all new tokens", "abc", "xyz", 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.expected, textSimilarity(c.a, c.b), 0.01)
		})
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Hello, World! foo_bar 123")
	assert.Equal(t, []string{"hello", "world", "foo_bar", "123"}, got)
}

func TestUnescapeHTMLEntities(t *testing.T) {
	cases := map[string]string{
		"a &amp; b":     "a & b",
		"&lt;tag&gt;":   "<tag>",
		"&#65;":         "A",
		"&#x41;":        "A",
		"no entities":   "no entities",
		"&quot;q&apos;": `"q'`,
	}
	for in, want := range cases {
		require.Equal(t, want, unescapeHTMLEntities(in))
	}
}

func TestUnescapeHTMLEntitiesInvalidCodepoint(t *testing.T) {
	got := unescapeHTMLEntities("&#0;")
	assert.Equal(t, "�", got)
}

func TestIsValidByline(t *testing.T) {
	assert.True(t, isValidByline("Jane Doe"))
	assert.False(t, isValidByline(""))
	assert.False(t, isValidByline(stringOfLen(150)))
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}
