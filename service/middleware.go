// Package service wires the detector, ingestor, document registry, audit
// log and PDF ingest fetcher into the RPC-shaped operation surface of §6
// (CheckPlagiarism, UploadDocument, BatchUpload, GetDocument,
// DeleteDocument, SearchDocuments, HealthCheck, IndexPdfFromMinio,
// CheckPdfFromMinio). The middleware chain is adapted from the teacher's
// middleware.MiddlewareChain: same recursive Execute/panic-recovery shape,
// generalised from an agent's message.Message exchange to an arbitrary RPC
// request/response pair.
package service

import (
	"context"
	"fmt"
)

// RPCContext carries one operation call through the middleware chain. It
// replaces the teacher's message.Message-coupled Context with untyped
// Request/Response fields, since the operations here exchange plain
// structs rather than chat messages.
type RPCContext struct {
	// Operation names the RPC being executed, for logging/metrics.
	Operation string

	// Request is the operation's input value.
	Request any

	// Response is populated by the final handler on success.
	Response any

	// Err carries a failure out of the chain, mirroring the teacher's
	// Context.Error field.
	Err error

	// Metadata passes data between middlewares.
	Metadata map[string]any

	ctx context.Context
}

// NewRPCContext creates an RPCContext for operation, wrapping ctx.
func NewRPCContext(ctx context.Context, operation string, request any) *RPCContext {
	return &RPCContext{
		Operation: operation,
		Request:   request,
		Metadata:  make(map[string]any),
		ctx:       ctx,
	}
}

// Context returns the underlying context.Context.
func (c *RPCContext) Context() context.Context { return c.ctx }

// Middleware intercepts an RPC call. Execute receives the current context
// and a next handler continuing the chain; returning an error stops it.
type Middleware interface {
	Name() string
	Execute(ctx *RPCContext, next Handler) error
}

// Handler passes control to the next middleware or the final operation.
type Handler func(*RPCContext) error

// Chain is a sequence of Middleware wrapping a final operation handler.
type Chain struct {
	middlewares []Middleware
}

// NewChain builds a Chain from middlewares, applied in the given order.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{middlewares: middlewares}
}

// Add appends a middleware to the chain.
func (c *Chain) Add(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Execute runs the chain over ctx, calling finalHandler once every
// middleware has run.
func (c *Chain) Execute(ctx *RPCContext, finalHandler Handler) error {
	return c.run(ctx, 0, finalHandler)
}

func (c *Chain) run(ctx *RPCContext, index int, finalHandler Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s middleware chain: %v", ctx.Operation, r)
			ctx.Err = err
		}
	}()

	if index >= len(c.middlewares) {
		if err := finalHandler(ctx); err != nil {
			return err
		}
		return ctx.Err
	}

	next := func(ctx *RPCContext) error {
		return c.run(ctx, index+1, finalHandler)
	}
	return c.middlewares[index].Execute(ctx, next)
}
