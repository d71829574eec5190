package data

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCloud() *Cloud {
	return NewCloud("scene", []Point{
		*NewPoint(0, 0, 0, 1, 2, 3),
		*NewPoint(1, -2, 3, 4, 5, 6),
		*NewPoint(-1, 4, 0.5, 7, 8, 9),
	})
}

func TestCloudCloneIsIndependent(t *testing.T) {
	cloud := testCloud()
	clone := cloud.Clone("copy")

	clone.Translate(0, 10, 0)
	clone.Points[0].SetColor([3]uint8{255, 255, 255})

	assert.Equal(t, "copy", clone.Name)
	assert.Equal(t, 0.0, cloud.Points[0].Y)
	assert.Equal(t, 10.0, clone.Points[0].Y)
	assert.Equal(t, [3]uint8{1, 2, 3}, cloud.Points[0].Color())
}

func TestCloudTranslate(t *testing.T) {
	cloud := testCloud().Translate(1, 10, -1)
	assert.Equal(t, Point{X: 2, Y: 8, Z: 2, R: 4, G: 5, B: 6}, cloud.Points[1])
}

func TestCloudSetColors(t *testing.T) {
	cloud := testCloud()
	require.NoError(t, cloud.SetColors([][3]uint8{{9, 9, 9}, {0, 0, 0}, {10, 20, 30}}))
	assert.Equal(t, [3]uint8{10, 20, 30}, cloud.Points[2].Color())

	err := cloud.SetColors([][3]uint8{{1, 1, 1}})
	assert.True(t, errors.Is(err, ErrColorCount))
}

func TestCloudBounds(t *testing.T) {
	min, max, ok := testCloud().Bounds()
	require.True(t, ok)
	assert.Equal(t, [3]float64{-1, -2, 0}, min)
	assert.Equal(t, [3]float64{1, 4, 3}, max)

	_, _, ok = NewCloud("empty", nil).Bounds()
	assert.False(t, ok)
}

func TestCloudAppend(t *testing.T) {
	cloud := testCloud()
	cloud.Append(Point{X: 5}, Point{X: 6})
	assert.Equal(t, 5, cloud.Len())
}
