package pkg

import (
	"errors"
	"fmt"

	"github.com/ecopia-map/scan_colorizer/internal/data"
	"github.com/ecopia-map/scan_colorizer/internal/labels"
	"github.com/ecopia-map/scan_colorizer/internal/markers"
	"github.com/ecopia-map/scan_colorizer/internal/npy"
	"github.com/ecopia-map/scan_colorizer/internal/options"
	"github.com/ecopia-map/scan_colorizer/internal/ply"
)

var ErrCountMismatch = errors.New("label count does not match point count")

// Scan holds the geometry and decoded labels of a single scan
type Scan struct {
	Name      string
	Cloud     *data.Cloud
	Composite []int32
	Semantic  []int32
	Instance  []int32
}

// Loads and decodes the labels of a scan, without geometry
func loadLabels(opts *options.Options, scan string) (*Scan, error) {
	composite, err := npy.LoadCompositeLabels(opts.ResultPath(scan))
	if err != nil {
		return nil, err
	}
	semantic, instance := labels.Decode(composite)
	return &Scan{
		Name:      scan,
		Composite: composite,
		Semantic:  semantic,
		Instance:  instance,
	}, nil
}

// LoadScan reads the labels and the geometry of a scan and checks they describe the same points
func LoadScan(opts *options.Options, scan string) (*Scan, error) {
	s, err := loadLabels(opts, scan)
	if err != nil {
		return nil, err
	}

	cloud, err := ply.ReadCloud(opts.GeometryPath(scan))
	if err != nil {
		return nil, err
	}
	cloud.Name = scan

	if cloud.Len() != len(s.Composite) {
		return nil, fmt.Errorf("%w: %d labels, %d points", ErrCountMismatch, len(s.Composite), cloud.Len())
	}
	s.Cloud = cloud
	return s, nil
}

// Colorize returns the semantic colored copy and the instance colored copy of the scan geometry.
// The instance copy is translated by the configured offset and carries the centroid markers if enabled.
func (s *Scan) Colorize(opts *options.Options) (semanticCloud *data.Cloud, instanceCloud *data.Cloud, err error) {
	semanticCloud = s.Cloud.Clone(s.Name + "_semantic")
	instanceCloud = s.Cloud.Clone(s.Name + "_instance")

	if err := semanticCloud.SetColors(labels.ColorizeSemantic(s.Semantic)); err != nil {
		return nil, nil, err
	}
	if err := instanceCloud.SetColors(labels.ColorizeInstances(s.Instance, opts.Background)); err != nil {
		return nil, nil, err
	}

	offset := opts.InstanceOffset
	instanceCloud.Translate(offset[0], offset[1], offset[2])

	if opts.Markers {
		instanceMarkers, err := markers.Generate(s.Cloud.Points, s.Semantic, s.Instance, opts.MarkerRadius)
		if err != nil {
			return nil, nil, err
		}
		for _, marker := range instanceMarkers {
			marker.Translate(offset[0], offset[1], offset[2])
			instanceCloud.Append(marker.Points(opts.MarkerPoints)...)
		}
	}

	return semanticCloud, instanceCloud, nil
}
