package data

import (
	"errors"
	"fmt"
)

var ErrColorCount = errors.New("number of colors does not match number of points")

// Cloud is an ordered list of points. The order matches the per-point label arrays.
type Cloud struct {
	Name   string
	Points []Point
}

func NewCloud(name string, points []Point) *Cloud {
	return &Cloud{Name: name, Points: points}
}

func (c *Cloud) Len() int {
	return len(c.Points)
}

// Clone returns a deep copy of the cloud under a new name
func (c *Cloud) Clone(name string) *Cloud {
	points := make([]Point, len(c.Points))
	copy(points, c.Points)
	return &Cloud{Name: name, Points: points}
}

// Translate moves every point by the given offset
func (c *Cloud) Translate(dx, dy, dz float64) *Cloud {
	for i := range c.Points {
		c.Points[i].X += dx
		c.Points[i].Y += dy
		c.Points[i].Z += dz
	}
	return c
}

// SetColors paints point i with colors[i]
func (c *Cloud) SetColors(colors [][3]uint8) error {
	if len(colors) != len(c.Points) {
		return fmt.Errorf("%w: %d colors for %d points", ErrColorCount, len(colors), len(c.Points))
	}
	for i := range c.Points {
		c.Points[i].SetColor(colors[i])
	}
	return nil
}

// Append adds points at the end of the cloud
func (c *Cloud) Append(points ...Point) {
	c.Points = append(c.Points, points...)
}

// Bounds returns the min and max corners of the cloud, ok is false for an empty cloud
func (c *Cloud) Bounds() (min, max [3]float64, ok bool) {
	if len(c.Points) == 0 {
		return min, max, false
	}
	p := c.Points[0]
	min = [3]float64{p.X, p.Y, p.Z}
	max = min
	for _, p := range c.Points[1:] {
		for axis, v := range [3]float64{p.X, p.Y, p.Z} {
			if v < min[axis] {
				min[axis] = v
			}
			if v > max[axis] {
				max[axis] = v
			}
		}
	}
	return min, max, true
}
