package options

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ecopia-map/scan_colorizer/internal/labels"
	"github.com/ecopia-map/scan_colorizer/internal/markers"
)

type Mode string

const (
	ModeExport Mode = "EXPORT"
	ModeView   Mode = "VIEW"
	ModeVerify Mode = "VERIFY"
	ModeStats  Mode = "STATS"
)

const (
	ResultFileName      = "result.npy"
	GeometryFileSuffix  = "_vh_clean_2.ply"
	SemanticFileSuffix  = "_semantic.ply"
	InstanceFileSuffix  = "_instance.ply"
	DefaultSplit        = "val"
	DefaultViewerHost   = "127.0.0.1"
	DefaultViewerPort   = "8020"
	ViewerHostEnv       = "WEBRTC_IP"
	ViewerPortEnv       = "WEBRTC_PORT"
	DefaultMarkerPoints = 64
)

// Contains the options needed to colorize a set of scans
type Options struct {
	DataRoot         string            `yaml:"dataRoot"`         // Dataset root, holds <split>/<scan>/<scan>_vh_clean_2.ply
	Split            string            `yaml:"split"`            // Dataset split folder, e.g. val
	EvalRoot         string            `yaml:"evalRoot"`         // Root of the result sets, defaults to <dataRoot>/eval
	ResultSet        string            `yaml:"resultSet"`        // Result set name, holds <scan>/result.npy
	ScanList         string            `yaml:"scanList"`         // Text file with one scan id per line, empty to discover scans
	OutputDir        string            `yaml:"outputDir"`        // Where colored clouds are written
	PreviewDir       string            `yaml:"previewDir"`       // Where preview images are written in view mode
	InstanceOffset   [3]float64        `yaml:"instanceOffset"`   // Translation applied to the instance colored copy
	Background       labels.Background `yaml:"background"`       // Instance id treated as "no instance"
	Markers          bool              `yaml:"markers"`          // Adds instance centroid markers to the instance copy
	MarkerRadius     float64           `yaml:"markerRadius"`     // Marker sphere radius, meters
	MarkerPoints     int               `yaml:"markerPoints"`     // Points sampled on each marker sphere
	Workers          int               `yaml:"workers"`          // Scans processed concurrently
	PreviewMaxPoints int               `yaml:"previewMaxPoints"` // Points drawn per cloud in previews
	ViewerHost       string            `yaml:"viewerHost"`
	ViewerPort       string            `yaml:"viewerPort"`

	Mode Mode `yaml:"-"`
}

// Returns the options with the defaults used by the driver
func Default() *Options {
	return &Options{
		Split:            DefaultSplit,
		InstanceOffset:   [3]float64{0, 10, 0},
		Background:       labels.BackgroundMax,
		MarkerRadius:     markers.DefaultRadius,
		MarkerPoints:     DefaultMarkerPoints,
		Workers:          1,
		PreviewMaxPoints: 50000,
		ViewerHost:       DefaultViewerHost,
		ViewerPort:       DefaultViewerPort,
		Mode:             ModeExport,
	}
}

// LoadFile overlays the values of a YAML file on top of opts
func (opts *Options) LoadFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(content, opts); err != nil {
		return fmt.Errorf("parsing %s: %w", filePath, err)
	}
	return nil
}

// ApplyEnv reads the viewer endpoint from the environment when set
func (opts *Options) ApplyEnv() {
	if host := os.Getenv(ViewerHostEnv); host != "" {
		opts.ViewerHost = host
	}
	if port := os.Getenv(ViewerPortEnv); port != "" {
		opts.ViewerPort = port
	}
}

func (opts *Options) ViewerAddress() string {
	return opts.ViewerHost + ":" + opts.ViewerPort
}

func (opts *Options) ResolvedEvalRoot() string {
	if opts.EvalRoot != "" {
		return opts.EvalRoot
	}
	return filepath.Join(opts.DataRoot, "eval")
}

// ResultSetDir is the folder holding one sub-folder per scan
func (opts *Options) ResultSetDir() string {
	return filepath.Join(opts.ResolvedEvalRoot(), opts.ResultSet)
}

func (opts *Options) ResultPath(scan string) string {
	return filepath.Join(opts.ResultSetDir(), scan, ResultFileName)
}

func (opts *Options) GeometryPath(scan string) string {
	return filepath.Join(opts.DataRoot, opts.Split, scan, scan+GeometryFileSuffix)
}

func (opts *Options) SemanticOutputPath(scan string) string {
	return filepath.Join(opts.OutputDir, scan+SemanticFileSuffix)
}

func (opts *Options) InstanceOutputPath(scan string) string {
	return filepath.Join(opts.OutputDir, scan+InstanceFileSuffix)
}

func (opts *Options) PreviewPath(scan string) string {
	return filepath.Join(opts.PreviewDir, scan+".png")
}

// Validate checks the options needed by the selected mode
func (opts *Options) Validate() error {
	if opts.Mode == "" {
		return errors.New("mode should be one of export, view, verify, stats")
	}
	if opts.DataRoot == "" {
		return errors.New("data-root is required")
	}
	if _, err := os.Stat(opts.DataRoot); os.IsNotExist(err) {
		return fmt.Errorf("data root %s not found", opts.DataRoot)
	}
	if opts.ResultSet == "" {
		return errors.New("result-set is required")
	}
	if opts.ScanList != "" {
		if _, err := os.Stat(opts.ScanList); os.IsNotExist(err) {
			return fmt.Errorf("scan list %s not found", opts.ScanList)
		}
	}
	if opts.Mode == ModeExport && opts.OutputDir == "" {
		return errors.New("output folder is required for export")
	}
	if opts.Mode == ModeView && opts.PreviewDir == "" {
		return errors.New("preview folder is required for view")
	}
	if opts.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if opts.Markers && opts.MarkerRadius <= 0 {
		return errors.New("marker radius must be positive")
	}
	return nil
}
