package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFontForHeight(t *testing.T) {

	small := FontForHeight(100)
	assert.Equal(t, 0.4, small.Scale)
	assert.Equal(t, 1, small.Thickness)
	assert.Equal(t, 2, small.LeftPad)

	large := FontForHeight(2200)
	assert.InDelta(t, 3.0, large.Scale, 1e-9)
	assert.Equal(t, 3, large.Thickness)
	assert.Equal(t, 15, large.LeftPad)
	assert.Equal(t, 22, large.BottomPad)

	assert.Equal(t, FontForHeight(640), DefaultFont())
	assert.Equal(t, Black, DefaultFont().Color)
	assert.Equal(t, Left, DefaultFont().Alignment)
}

func TestLineWidth(t *testing.T) {
	assert.Equal(t, 1, LineWidth(0))
	assert.Equal(t, 1, LineWidth(300))
	assert.Equal(t, 3, LineWidth(576))
	assert.Equal(t, 6, LineWidth(1080))
}
