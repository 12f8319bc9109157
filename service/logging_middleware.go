package service

import (
	"log/slog"
	"time"
)

// RequestLogger logs the start of each operation, adapted from the
// teacher's logger.RequestLogger generalised from a string LoggerFunc to a
// structured *slog.Logger.
type RequestLogger struct {
	logger *slog.Logger
}

// NewRequestLogger builds a RequestLogger writing through logger.
func NewRequestLogger(logger *slog.Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

func (m *RequestLogger) Name() string { return "RequestLogger" }

func (m *RequestLogger) Execute(ctx *RPCContext, next Handler) error {
	start := time.Now()
	ctx.Metadata["start_time"] = start
	if m.logger != nil {
		m.logger.InfoContext(ctx.Context(), "rpc started", "operation", ctx.Operation)
	}
	return next(ctx)
}

// ResponseLogger logs the outcome of each operation once the chain
// completes, including elapsed time recorded by RequestLogger.
type ResponseLogger struct {
	logger *slog.Logger
}

// NewResponseLogger builds a ResponseLogger writing through logger.
func NewResponseLogger(logger *slog.Logger) *ResponseLogger {
	return &ResponseLogger{logger: logger}
}

func (m *ResponseLogger) Name() string { return "ResponseLogger" }

func (m *ResponseLogger) Execute(ctx *RPCContext, next Handler) error {
	err := next(ctx)
	if m.logger == nil {
		return err
	}

	var elapsed time.Duration
	if start, ok := ctx.Metadata["start_time"].(time.Time); ok {
		elapsed = time.Since(start)
	}
	if err != nil {
		m.logger.ErrorContext(ctx.Context(), "rpc failed", "operation", ctx.Operation, "error", err, "elapsed", elapsed)
	} else {
		m.logger.InfoContext(ctx.Context(), "rpc completed", "operation", ctx.Operation, "elapsed", elapsed)
	}
	return err
}
