// Package preview draws top-down snapshots of colored point clouds and serves them over HTTP.
package preview

import (
	"context"
	"errors"
	"image/color"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ecopia-map/scan_colorizer/internal/data"
	"github.com/ecopia-map/scan_colorizer/internal/grid"
)

var ErrNothingToDraw = errors.New("no points to draw")

// Options controls the snapshot rendering
type Options struct {
	Title     string
	MaxPoints int       // points per cloud, 0 draws every point
	CellSize  float64   // clouds are thinned to one point per cell first, 0 disables
	Size      vg.Length // side of the square image
	PointSize vg.Length
}

func DefaultOptions() Options {
	return Options{
		MaxPoints: 50000,
		CellSize:  0.01,
		Size:      10 * vg.Inch,
		PointSize: vg.Points(0.6),
	}
}

// Render draws the clouds seen from above (X/Y plane) and saves the image to filePath.
// The file extension selects the image format.
func Render(filePath string, opts Options, clouds ...*data.Cloud) error {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.BackgroundColor = color.White

	drawn := 0
	for _, cloud := range clouds {
		if cloud == nil || cloud.Len() == 0 {
			continue
		}
		scatter, err := newScatter(cloud, opts)
		if err != nil {
			return err
		}
		p.Add(scatter)
		drawn++
	}
	if drawn == 0 {
		return ErrNothingToDraw
	}

	// same scale on both axes so the floor plan is not distorted
	min, max, _ := viewRange(clouds...)
	p.X.Min, p.X.Max = min[0], max[0]
	p.Y.Min, p.Y.Max = min[1], max[1]

	return p.Save(opts.Size, opts.Size, filePath)
}

func newScatter(cloud *data.Cloud, opts Options) (*plotter.Scatter, error) {
	points := Downsample(grid.Thin(cloud.Points, opts.CellSize), opts.MaxPoints)

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		pt := points[i]
		return draw.GlyphStyle{
			Color:  color.RGBA{R: pt.R, G: pt.G, B: pt.B, A: 255},
			Radius: opts.PointSize,
			Shape:  draw.CircleGlyph{},
		}
	}
	return scatter, nil
}

// viewRange returns the smallest square in the X/Y plane holding every cloud
func viewRange(clouds ...*data.Cloud) (min, max [2]float64, ok bool) {
	for _, cloud := range clouds {
		if cloud == nil {
			continue
		}
		cmin, cmax, cok := cloud.Bounds()
		if !cok {
			continue
		}
		if !ok {
			min = [2]float64{cmin[0], cmin[1]}
			max = [2]float64{cmax[0], cmax[1]}
			ok = true
			continue
		}
		for axis := 0; axis < 2; axis++ {
			min[axis] = math.Min(min[axis], cmin[axis])
			max[axis] = math.Max(max[axis], cmax[axis])
		}
	}
	if !ok {
		return min, max, false
	}

	side := math.Max(max[0]-min[0], max[1]-min[1])
	if side == 0 {
		side = 1
	}
	for axis := 0; axis < 2; axis++ {
		center := (min[axis] + max[axis]) / 2
		min[axis] = center - side/2
		max[axis] = center + side/2
	}
	return min, max, true
}

// Downsample keeps every k-th point so that at most max points remain
func Downsample(points []data.Point, max int) []data.Point {
	if max <= 0 || len(points) <= max {
		return points
	}
	stride := (len(points) + max - 1) / max
	sampled := make([]data.Point, 0, max)
	for i := 0; i < len(points); i += stride {
		sampled = append(sampled, points[i])
	}
	return sampled
}

// Serve exposes dir over HTTP on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, dir string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serve(ctx, listener, dir)
}

func serve(ctx context.Context, listener net.Listener, dir string) error {
	server := &http.Server{
		Handler:           http.FileServer(http.Dir(dir)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(listener)
	}()
	glog.Infof("serving previews from %s on http://%s/", dir, listener.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
