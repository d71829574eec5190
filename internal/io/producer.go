package io

import "context"

type Producer interface {
	Produce(ctx context.Context, work chan<- *WorkUnit) error
}

// Handler processes the scan of a WorkUnit
type Handler interface {
	Handle(ctx context.Context, workUnit *WorkUnit) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, workUnit *WorkUnit) error

func (f HandlerFunc) Handle(ctx context.Context, workUnit *WorkUnit) error {
	return f(ctx, workUnit)
}
