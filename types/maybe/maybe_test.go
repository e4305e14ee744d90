package maybe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaybe(t *testing.T) {
	s := Some(850.0)
	assert.True(t, s.IsValid())
	assert.Equal(t, 850.0, s.Value())
	assert.Equal(t, "850", s.String())

	n := None[float64]()
	assert.False(t, n.IsValid())
	assert.Equal(t, 1.5, n.ValueOrDefault(1.5))
	assert.Equal(t, "-", n.String())

	v, ok := SqlNull(3, false).Get()
	assert.False(t, ok)
	assert.Equal(t, 3, v)
}

func TestMap(t *testing.T) {
	half := func(f float64) float64 { return f / 2 }
	assert.Equal(t, Some(2.0), Map(Some(4.0), half))
	assert.False(t, Map(None[float64](), half).IsValid())
}
