// Package markers places a small sphere at the centroid of every instance.
package markers

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ecopia-map/scan_colorizer/internal/data"
	"github.com/ecopia-map/scan_colorizer/internal/labels"
)

// DefaultRadius is the marker radius in meters
const DefaultRadius = 0.05

var ErrLengthMismatch = errors.New("points and labels must have the same length")

// Marker is a sphere centered on the centroid of an instance, colored by the instance class
type Marker struct {
	Instance int32
	Semantic int32
	Center   [3]float64
	Radius   float64
	Color    labels.RGB
	Members  int
}

// Generate returns one marker per distinct instance id, ordered by instance id.
// The class of an instance is the semantic id of its first point.
func Generate(points []data.Point, semantic, instance []int32, radius float64) ([]Marker, error) {
	if len(points) != len(semantic) || len(points) != len(instance) {
		return nil, ErrLengthMismatch
	}

	members := make(map[int32][]int)
	for i, id := range instance {
		members[id] = append(members[id], i)
	}

	ids := labels.DistinctInstances(instance)
	result := make([]Marker, 0, len(ids))
	xs, ys, zs := make([]float64, 0), make([]float64, 0), make([]float64, 0)
	for _, id := range ids {
		idx := members[id]
		xs, ys, zs = xs[:0], ys[:0], zs[:0]
		for _, i := range idx {
			xs = append(xs, points[i].X)
			ys = append(ys, points[i].Y)
			zs = append(zs, points[i].Z)
		}

		class := semantic[idx[0]]
		result = append(result, Marker{
			Instance: id,
			Semantic: class,
			Center:   [3]float64{stat.Mean(xs, nil), stat.Mean(ys, nil), stat.Mean(zs, nil)},
			Radius:   radius,
			Color:    labels.SemanticColor(class),
			Members:  len(idx),
		})
	}
	return result, nil
}

// Points samples n points on the marker sphere surface using a Fibonacci lattice
func (m Marker) Points(n int) []data.Point {
	if n <= 0 {
		return nil
	}
	points := make([]data.Point, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1.0
		if n > 1 {
			y = 1 - 2*float64(i)/float64(n-1)
		}
		r := math.Sqrt(math.Max(0, 1-y*y))
		theta := golden * float64(i)
		points[i] = data.Point{
			X: m.Center[0] + m.Radius*r*math.Cos(theta),
			Y: m.Center[1] + m.Radius*y,
			Z: m.Center[2] + m.Radius*r*math.Sin(theta),
			R: m.Color[0],
			G: m.Color[1],
			B: m.Color[2],
		}
	}
	return points
}

// Translate moves the marker center
func (m *Marker) Translate(dx, dy, dz float64) {
	m.Center[0] += dx
	m.Center[1] += dy
	m.Center[2] += dz
}
