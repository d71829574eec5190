// Package grid thins point clouds by dividing space in cubic cells and keeping one point per cell.
package grid

import (
	"math"

	"github.com/ecopia-map/scan_colorizer/internal/data"
)

type gridIndex struct {
	x int
	y int
	z int
}

// A cell retains the point closest to its center
type gridCell struct {
	center   [3]float64
	point    data.Point
	distance float64
}

// Grid keeps at most one point per cell. Cells are reported in the order they were first filled.
// A Grid is not safe for concurrent use.
type Grid struct {
	cellSize float64
	cells    map[gridIndex]*gridCell
	order    []gridIndex
}

func New(cellSize float64) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[gridIndex]*gridCell),
	}
}

// Add pushes a point in its cell and returns the point the cell rejected, if any
func (g *Grid) Add(point data.Point) (data.Point, bool) {
	index := g.getPointGridCellIndex(point)
	cell := g.cells[index]
	if cell == nil {
		g.cells[index] = g.initializeGridCell(index, point)
		g.order = append(g.order, index)
		return data.Point{}, false
	}
	return cell.pushPoint(point)
}

// Points returns the retained points
func (g *Grid) Points() []data.Point {
	points := make([]data.Point, 0, len(g.order))
	for _, index := range g.order {
		points = append(points, g.cells[index].point)
	}
	return points
}

func (g *Grid) getPointGridCellIndex(point data.Point) gridIndex {
	return gridIndex{
		x: int(math.Floor(point.X / g.cellSize)),
		y: int(math.Floor(point.Y / g.cellSize)),
		z: int(math.Floor(point.Z / g.cellSize)),
	}
}

func (g *Grid) initializeGridCell(index gridIndex, point data.Point) *gridCell {
	half := g.cellSize / 2
	cell := &gridCell{
		center: [3]float64{
			float64(index.x)*g.cellSize + half,
			float64(index.y)*g.cellSize + half,
			float64(index.z)*g.cellSize + half,
		},
		point: point,
	}
	cell.distance = cell.distanceTo(point)
	return cell
}

func (c *gridCell) distanceTo(point data.Point) float64 {
	dx := point.X - c.center[0]
	dy := point.Y - c.center[1]
	dz := point.Z - c.center[2]
	return dx*dx + dy*dy + dz*dz
}

// on ties the stored point wins
func (c *gridCell) pushPoint(point data.Point) (data.Point, bool) {
	distance := c.distanceTo(point)
	if distance < c.distance {
		rejected := c.point
		c.point = point
		c.distance = distance
		return rejected, true
	}
	return point, true
}

// Thin keeps the point closest to the center of every occupied cell. A non positive cell size keeps every point.
func Thin(points []data.Point, cellSize float64) []data.Point {
	if cellSize <= 0 {
		return points
	}
	g := New(cellSize)
	for _, point := range points {
		g.Add(point)
	}
	return g.Points()
}
