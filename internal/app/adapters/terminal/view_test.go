package terminal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func numbered(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprint(i)
	}
	return lines
}

func TestViewFollowsTail(t *testing.T) {
	v := NewView(3)
	v.SetLines(numbered(10))
	assert.Equal(t, []string{"7", "8", "9"}, v.Visible())

	v.SetLines(numbered(11))
	assert.Equal(t, []string{"8", "9", "10"}, v.Visible())
}

func TestViewScrolling(t *testing.T) {
	v := NewView(3)
	v.SetLines(numbered(10))

	v.ScrollUp()
	assert.Equal(t, 6, v.Offset())

	v.SetLines(numbered(12))
	assert.Equal(t, 6, v.Offset(), "scrolled view stays put")

	v.Top()
	assert.Equal(t, []string{"0", "1", "2"}, v.Visible())
	v.ScrollUp()
	assert.Equal(t, 0, v.Offset())

	v.PageDown()
	assert.Equal(t, 3, v.Offset())
	v.ScrollDown()
	assert.Equal(t, 4, v.Offset())
	v.PageUp()
	assert.Equal(t, 1, v.Offset())

	v.Bottom()
	v.SetLines(numbered(13))
	assert.Equal(t, []string{"10", "11", "12"}, v.Visible())

	v.PageDown()
	assert.Equal(t, 10, v.Offset())
}

func TestViewShortContent(t *testing.T) {
	v := NewView(5)
	v.SetLines(numbered(2))
	assert.Equal(t, []string{"0", "1"}, v.Visible())

	v.ScrollDown()
	assert.Equal(t, 0, v.Offset())

	v.SetLines(numbered(8))
	v.SetHeight(4)
	assert.Equal(t, []string{"4", "5", "6", "7"}, v.Visible())
}
