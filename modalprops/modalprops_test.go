package modalprops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	t.Parallel()

	m := Map{"b": 2, "a": 1}

	props := m.Props()
	assert.Equal(t, 2, m.Len())
	assert.Len(t, props, 2)
	assert.Equal(t, "a", props[0].Key())
	assert.Equal(t, "b", props[1].Key())
}

func TestAlways(t *testing.T) {
	t.Parallel()

	m := Always{"user": "jane"}

	props := m.Props()
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "user", props[0].Key())
}
