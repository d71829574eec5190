package io

import (
	"github.com/ecopia-map/scan_colorizer/internal/options"
)

// Contains the minimal data needed to process a single scan
type WorkUnit struct {
	Scan  string
	Index int // position of the scan in the run, starting at 0
	Total int
	Opts  *options.Options
}
