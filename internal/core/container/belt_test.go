package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBelt_SetClamps(t *testing.T) {
	b := NewBelt([]string{"a", "b", "c"})

	b.Set(10)
	assert.Equal(t, 2, b.Index())
	assert.Equal(t, "c", b.Current())

	b.Set(-5)
	assert.Equal(t, 0, b.Index())

	b.Set(Last)
	assert.Equal(t, 2, b.Index())
}

func TestBelt_MoveCycles(t *testing.T) {
	b := NewBelt([]string{"a", "b", "c"})
	b.Set(2)

	b.Move(1, true)
	assert.Equal(t, 0, b.Index())

	b.Move(-1, true)
	assert.Equal(t, 2, b.Index())
}

func TestBelt_MoveWithoutCycleClamps(t *testing.T) {
	b := NewBelt([]string{"a", "b", "c"})
	b.Set(2)
	b.Move(5, false)
	assert.Equal(t, 2, b.Index())
}

func TestBelt_PanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() {
		NewBelt([]string{})
	})
}
