package markdownutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadings(t *testing.T) {
	md := "# Title\n\nSome text.\n\n## Setup\n\n- step one\n- step two\n\n## Usage\n"
	assert.Equal(t, []string{"Title", "Setup", "Usage"}, Headings(md))
}

func TestHeadings_Empty(t *testing.T) {
	assert.Empty(t, Headings("plain paragraph, no headings"))
}

func TestHeadingSet(t *testing.T) {
	set := HeadingSet("# A\n# B\n")
	assert.True(t, set["A"])
	assert.True(t, set["B"])
	assert.False(t, set["C"])
}

func TestCountListItems(t *testing.T) {
	md := "intro\n\n- one\n- two\n\n1. three\n"
	assert.Equal(t, 3, CountListItems(md))
}
