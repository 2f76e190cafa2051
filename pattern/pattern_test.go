package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	p, ok := Parse("lib/%.o")
	assert.True(t, ok)
	assert.Equal(t, Pattern{Prefix: "lib/", Suffix: ".o"}, p)
	assert.Equal(t, "lib/%.o", p.String())

	_, ok = Parse("invalid")
	assert.False(t, ok)
}

func TestStem(t *testing.T) {
	testCases := []struct {
		pattern string
		s       string
		stem    string
		ok      bool
	}{
		{"%.c", "foo.c", "foo", true},
		{"%.c", "foo.h", "", false},
		{"pp-%", "pp-files", "files", true},
		{"%", "anything", "anything", true},
		{"a%a", "a", "", false},
		{"a%a", "aa", "", true},
		{"lib/%.o", "src/foo.o", "", false},
	}
	for _, tc := range testCases {
		p, _ := Parse(tc.pattern)
		stem, ok := p.Stem(tc.s)
		assert.Equal(t, tc.ok, ok, tc.pattern+" "+tc.s)
		assert.Equal(t, tc.stem, stem, tc.pattern+" "+tc.s)
		assert.Equal(t, tc.ok, p.Match(tc.s))
	}
}

func TestSubst(t *testing.T) {
	p, _ := Parse("%.o")
	assert.Equal(t, "foo.o", p.Subst("foo"))
}
