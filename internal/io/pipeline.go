package io

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run launches the producer and numConsumers consumers, and waits for all of them.
// The first error cancels the others and is returned.
func Run(ctx context.Context, producer Producer, handler Handler, numConsumers int) error {
	if numConsumers < 1 {
		numConsumers = 1
	}

	g, ctx := errgroup.WithContext(ctx)

	// buffer sized on the number of consumers, as scans are large
	workChannel := make(chan *WorkUnit, numConsumers)

	g.Go(func() error {
		return producer.Produce(ctx, workChannel)
	})

	for i := 0; i < numConsumers; i++ {
		consumer := NewStandardConsumer(handler)
		g.Go(func() error {
			return consumer.Consume(ctx, workChannel)
		})
	}

	return g.Wait()
}
