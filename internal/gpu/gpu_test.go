package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fragment = `//kage:unit pixels

package main

var Resolution vec2
var (
	ElapsedTime float
	Extra       float
)

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return vec4(ElapsedTime)
}
`

func TestDeclaredUniforms(t *testing.T) {
	names, err := DeclaredUniforms(fragment)
	require.NoError(t, err)
	assert.Equal(t, []string{"ElapsedTime", "Extra", "Resolution"}, names)

	_, err = DeclaredUniforms("package main\nfunc Fragment(")
	assert.Error(t, err)
}

func TestCheckContract(t *testing.T) {
	ok, log := CheckContract(fragment)
	assert.True(t, ok)
	assert.Empty(t, log)

	ok, log = CheckContract("package main\nvar Resolution vec2\n")
	assert.False(t, ok)
	assert.Contains(t, log, "ElapsedTime")
	assert.NotContains(t, log, "Resolution")
}

func TestBackingSize(t *testing.T) {
	w, h := BackingSize(400, 300, 2)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	w, h = BackingSize(401, 301, 1.5)
	assert.Equal(t, 602, w)
	assert.Equal(t, 452, h)

	w, _ = BackingSize(400, 300, 0)
	assert.Equal(t, 400, w)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "vertex", Vertex.String())
	assert.Equal(t, "fragment", Fragment.String())
	assert.Equal(t, "stage(7)", Stage(7).String())
}
