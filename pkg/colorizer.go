package pkg

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/golang/glog"

	"github.com/ecopia-map/scan_colorizer/internal/io"
	"github.com/ecopia-map/scan_colorizer/internal/labels"
	"github.com/ecopia-map/scan_colorizer/internal/options"
	"github.com/ecopia-map/scan_colorizer/internal/ply"
	"github.com/ecopia-map/scan_colorizer/internal/preview"
	"github.com/ecopia-map/scan_colorizer/tools"
)

type ITask interface {
	Run(ctx context.Context, opts *options.Options) (*Report, error)
}

// CountMismatch is a scan whose label and point counts differ
type CountMismatch struct {
	Labels int `json:"labels"`
	Points int `json:"points"`
}

// Report collects what a run produced
type Report struct {
	Scans      []string                  `json:"scans"`
	Written    []string                  `json:"written,omitempty"`
	Previews   []string                  `json:"previews,omitempty"`
	Summaries  map[string]labels.Summary `json:"summaries,omitempty"`
	Mismatches map[string]CountMismatch  `json:"mismatches,omitempty"`

	mu sync.Mutex
}

func (r *Report) addWritten(paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Written = append(r.Written, paths...)
}

func (r *Report) addPreview(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Previews = append(r.Previews, path)
}

func (r *Report) addSummary(scan string, summary labels.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Summaries[scan] = summary
}

func (r *Report) addMismatch(scan string, mismatch CountMismatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Mismatches[scan] = mismatch
}

// sorts the collected paths, consumers may finish in any order
func (r *Report) finish() {
	sort.Strings(r.Written)
	sort.Strings(r.Previews)
}

type Colorizer struct {
	scanFinder tools.ScanFinder
}

func NewColorizer(scanFinder tools.ScanFinder) ITask {
	return &Colorizer{
		scanFinder: scanFinder,
	}
}

// Runs the selected mode over every scan
func (c *Colorizer) Run(ctx context.Context, opts *options.Options) (*Report, error) {
	tools.LogOutput("Preparing list of scans to process...")

	scans, err := c.scanFinder.GetScansToProcess(opts)
	if err != nil {
		return nil, err
	}
	tools.LogOutput("find " + strconv.Itoa(len(scans)) + " scans")

	report := &Report{
		Scans:      scans,
		Summaries:  make(map[string]labels.Summary),
		Mismatches: make(map[string]CountMismatch),
	}
	if len(scans) == 0 {
		return report, nil
	}

	handler, err := c.handlerFor(opts, report)
	if err != nil {
		return nil, err
	}

	producer := io.NewStandardProducer(scans, opts)
	if err := io.Run(ctx, producer, handler, opts.Workers); err != nil {
		return nil, err
	}

	report.finish()
	return report, nil
}

func (c *Colorizer) handlerFor(opts *options.Options, report *Report) (io.Handler, error) {
	switch opts.Mode {
	case options.ModeExport:
		if err := tools.CreateDirectoryIfDoesNotExist(opts.OutputDir); err != nil {
			return nil, err
		}
		return io.HandlerFunc(func(ctx context.Context, workUnit *io.WorkUnit) error {
			return exportScan(workUnit, report)
		}), nil
	case options.ModeView:
		if err := tools.CreateDirectoryIfDoesNotExist(opts.PreviewDir); err != nil {
			return nil, err
		}
		return io.HandlerFunc(func(ctx context.Context, workUnit *io.WorkUnit) error {
			return previewScan(workUnit, report)
		}), nil
	case options.ModeVerify:
		return io.HandlerFunc(func(ctx context.Context, workUnit *io.WorkUnit) error {
			return verifyScan(workUnit, report)
		}), nil
	case options.ModeStats:
		return io.HandlerFunc(func(ctx context.Context, workUnit *io.WorkUnit) error {
			return summarizeScan(workUnit, report)
		}), nil
	}
	return nil, fmt.Errorf("unknown mode %q", opts.Mode)
}

func logProgress(workUnit *io.WorkUnit) {
	tools.LogOutput("Processing scan " + strconv.Itoa(workUnit.Index+1) + "/" + strconv.Itoa(workUnit.Total) + ", " + workUnit.Scan)
}

// Writes the semantic and instance colored copies of the scan
func exportScan(workUnit *io.WorkUnit, report *Report) error {
	logProgress(workUnit)
	opts := workUnit.Opts

	scan, err := LoadScan(opts, workUnit.Scan)
	if err != nil {
		return err
	}
	semanticCloud, instanceCloud, err := scan.Colorize(opts)
	if err != nil {
		return err
	}

	semanticPath := opts.SemanticOutputPath(workUnit.Scan)
	if err := ply.WriteCloud(semanticPath, semanticCloud); err != nil {
		return err
	}
	instancePath := opts.InstanceOutputPath(workUnit.Scan)
	if err := ply.WriteCloud(instancePath, instanceCloud); err != nil {
		return err
	}

	report.addWritten(semanticPath, instancePath)
	tools.LogOutput("> done processing", workUnit.Scan)
	return nil
}

// Draws both colored copies side by side in a preview image
func previewScan(workUnit *io.WorkUnit, report *Report) error {
	logProgress(workUnit)
	opts := workUnit.Opts

	scan, err := LoadScan(opts, workUnit.Scan)
	if err != nil {
		return err
	}
	semanticCloud, instanceCloud, err := scan.Colorize(opts)
	if err != nil {
		return err
	}

	previewOpts := preview.DefaultOptions()
	previewOpts.Title = workUnit.Scan
	previewOpts.MaxPoints = opts.PreviewMaxPoints

	previewPath := opts.PreviewPath(workUnit.Scan)
	if err := preview.Render(previewPath, previewOpts, semanticCloud, instanceCloud); err != nil {
		return err
	}

	report.addPreview(previewPath)
	tools.LogOutput("> done rendering", workUnit.Scan)
	return nil
}

// Compares the label count with the point count. A mismatch is reported, not returned as an error.
func verifyScan(workUnit *io.WorkUnit, report *Report) error {
	logProgress(workUnit)
	opts := workUnit.Opts

	s, err := loadLabels(opts, workUnit.Scan)
	if err != nil {
		return err
	}
	cloud, err := ply.ReadCloud(opts.GeometryPath(workUnit.Scan))
	if err != nil {
		return err
	}

	if cloud.Len() != len(s.Composite) {
		glog.Warningf("scan %s: %v: %d labels, %d points", workUnit.Scan, ErrCountMismatch, len(s.Composite), cloud.Len())
		report.addMismatch(workUnit.Scan, CountMismatch{Labels: len(s.Composite), Points: cloud.Len()})
	}
	return nil
}

func summarizeScan(workUnit *io.WorkUnit, report *Report) error {
	logProgress(workUnit)

	s, err := loadLabels(workUnit.Opts, workUnit.Scan)
	if err != nil {
		return err
	}
	report.addSummary(workUnit.Scan, labels.Summarize(s.Semantic, s.Instance))
	return nil
}
