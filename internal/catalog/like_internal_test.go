package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"milk":     "milk",
		"50%":      `50\%`,
		"a_b":      `a\_b`,
		`c:\dairy`: `c:\\dairy`,
		`%_\`:      `\%\_\\`,
	}

	for in, want := range cases {
		assert.Equal(t, want, escapeLike(in), "input %q", in)
	}
}
