package io

import (
	"context"
	"fmt"

	"github.com/golang/glog"
)

type StandardConsumer struct {
	handler Handler
}

func NewStandardConsumer(handler Handler) *StandardConsumer {
	return &StandardConsumer{
		handler: handler,
	}
}

// Continually consumes WorkUnits submitted to a work channel handing them to the handler.
// Continues working until the work channel is closed or the context is cancelled. The first
// handler error stops the consumer and is returned.
func (c *StandardConsumer) Consume(ctx context.Context, workchan <-chan *WorkUnit) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case work, ok := <-workchan:
			if !ok {
				// channel was closed by producer
				return nil
			}

			if err := c.handler.Handle(ctx, work); err != nil {
				glog.Errorf("scan %s failed: %v", work.Scan, err)
				return fmt.Errorf("scan %s: %w", work.Scan, err)
			}
		}
	}
}
