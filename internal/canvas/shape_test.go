package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/scrawl/internal/canvas"
)

func TestRectFromDrag(t *testing.T) {
	t.Parallel()

	t.Run("normalizes reversed drag", func(t *testing.T) {
		t.Parallel()

		s, ok := canvas.RectFromDrag(50, 50, 10, 10, "#FF0000")
		require.True(t, ok)

		assert.Equal(t, canvas.ShapeRect, s.Type)
		assert.Equal(t, 10.0, s.X)
		assert.Equal(t, 10.0, s.Y)
		assert.Equal(t, 40.0, s.Width)
		assert.Equal(t, 40.0, s.Height)
		assert.NotEmpty(t, s.ID)
	})

	t.Run("rejects degenerate drag", func(t *testing.T) {
		t.Parallel()

		_, ok := canvas.RectFromDrag(100, 100, 101, 101, "")
		assert.False(t, ok)
	})

	t.Run("accepts thin but long drag", func(t *testing.T) {
		t.Parallel()

		s, ok := canvas.RectFromDrag(0, 0, 100, 1, "")
		require.True(t, ok)
		assert.Equal(t, 100.0, s.Width)
		assert.Equal(t, 1.0, s.Height)
	})
}

func TestCircleFromDrag(t *testing.T) {
	t.Parallel()

	t.Run("center at drag midpoint", func(t *testing.T) {
		t.Parallel()

		s, ok := canvas.CircleFromDrag(0, 0, 10, 0, "")
		require.True(t, ok)

		assert.Equal(t, 5.0, s.CenterX)
		assert.Equal(t, 0.0, s.CenterY)
		assert.Equal(t, 5.0, s.Radius)
	})

	t.Run("radius never negative", func(t *testing.T) {
		t.Parallel()

		s, ok := canvas.CircleFromDrag(10, 10, -30, 10, "")
		require.True(t, ok)
		assert.GreaterOrEqual(t, s.Radius, 0.0)
	})

	t.Run("rejects degenerate drag", func(t *testing.T) {
		t.Parallel()

		_, ok := canvas.CircleFromDrag(5, 5, 6, 5, "")
		assert.False(t, ok)
	})
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	t.Run("rect moves anchor", func(t *testing.T) {
		t.Parallel()

		s, _ := canvas.RectFromDrag(0, 0, 10, 10, "")
		moved := s.Translate(5, -3)

		assert.Equal(t, 5.0, moved.X)
		assert.Equal(t, -3.0, moved.Y)
		assert.Equal(t, s.Width, moved.Width)
		assert.Equal(t, s.ID, moved.ID)
	})

	t.Run("line moves both endpoints", func(t *testing.T) {
		t.Parallel()

		s := canvas.SegmentFromDrag(canvas.ShapeLine, 0, 0, 10, 10, "")
		moved := s.Translate(1, 2)

		assert.Equal(t, 1.0, moved.StartX)
		assert.Equal(t, 2.0, moved.StartY)
		assert.Equal(t, 11.0, moved.EndX)
		assert.Equal(t, 12.0, moved.EndY)
	})

	t.Run("circle moves center", func(t *testing.T) {
		t.Parallel()

		s, _ := canvas.CircleFromDrag(0, 0, 20, 0, "")
		moved := s.Translate(-4, 4)

		assert.Equal(t, 6.0, moved.CenterX)
		assert.Equal(t, 4.0, moved.CenterY)
		assert.Equal(t, s.Radius, moved.Radius)
	})
}

func TestDisplayColor(t *testing.T) {
	t.Parallel()

	s := canvas.TextAt(0, 0, "hi", 16, "")
	assert.Equal(t, canvas.DefaultColor, s.DisplayColor())

	s.Color = "#00FF00"
	assert.Equal(t, "#00FF00", s.DisplayColor())
}
