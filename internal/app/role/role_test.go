package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]Role{"0": User, "user": User, "1": Manager, "Manager": Manager, "2": Admin, " admin ": Admin}
	for in, want := range cases {
		got, ok := Parse(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := Parse("root")
	assert.False(t, ok)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, Admin.Valid())
	assert.False(t, Role(7).Valid())
	assert.Equal(t, "unknown", Role(-1).String())
}
