package io

import (
	"context"

	"github.com/ecopia-map/scan_colorizer/internal/options"
)

type StandardProducer struct {
	scans   []string
	options *options.Options
}

func NewStandardProducer(scans []string, options *options.Options) *StandardProducer {
	return &StandardProducer{
		scans:   scans,
		options: options,
	}
}

// Submits a WorkUnit per scan to the provided work channel, in order.
// Closes the channel when all work is submitted or the context is cancelled.
func (p *StandardProducer) Produce(ctx context.Context, work chan<- *WorkUnit) error {
	defer close(work)

	for i, scan := range p.scans {
		workUnit := &WorkUnit{
			Scan:  scan,
			Index: i,
			Total: len(p.scans),
			Opts:  p.options,
		}
		select {
		case work <- workUnit:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
