package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// Alphabet construction
// =============================================================================

func TestParse_DropsDuplicates(t *testing.T) {
	a := Parse("abcabca")
	assert.Equal(t, "abc", a.String())
	assert.Equal(t, 3, a.Len())
}

func TestParse_Empty(t *testing.T) {
	a := Parse("")
	assert.Zero(t, a.Len())
	assert.Equal(t, "", a.String())
}

func TestParse_Unicode(t *testing.T) {
	a := Parse("ééa")
	assert.Equal(t, Alphabet{'é', 'a'}, a)
}

func TestFromText_KeepsLettersSpacesAndMark(t *testing.T) {
	got := FromText("Hi, there!\n42 ok?", '!')
	for _, r := range "Hithero !\n" {
		assert.True(t, got.Contains(r), "expected %q", r)
	}
	for _, r := range ",42?" {
		assert.False(t, got.Contains(r), "unexpected %q", r)
	}
}

func TestFromText_NoMark(t *testing.T) {
	got := FromText("a!b", 0)
	assert.Equal(t, "ab", got.String())
}

func TestFromText_FirstSeenOrder(t *testing.T) {
	got := FromText("banana", 0)
	assert.Equal(t, "ban", got.String())
}

func TestCovers(t *testing.T) {
	a := Parse("abc")
	assert.True(t, a.Covers("cab"))
	assert.True(t, a.Covers(""))
	assert.False(t, a.Covers("cad"))
}
