package context

import (
	"context"
	"time"

	"github.com/Calnunes/ZK-Access-Control-System/logger"
)

// Context carries the per-call logger and start time through the host.
type Context interface {
	context.Context
	GetLog() logger.Logger
	GetStart() time.Time
}

type BaseCtx struct {
	context.Context
	XLog  logger.Logger
	Start time.Time
}

func NewBaseCtx(ctx context.Context, xlog logger.Logger) *BaseCtx {
	if ctx == nil {
		ctx = context.Background()
	}
	return &BaseCtx{
		Context: ctx,
		XLog:    xlog,
		Start:   time.Now(),
	}
}

func WithNewContext(parent Context, ctx context.Context) Context {
	return &BaseCtx{
		Context: ctx,
		XLog:    parent.GetLog(),
		Start:   parent.GetStart(),
	}
}

func (t *BaseCtx) GetLog() logger.Logger {
	return t.XLog
}

func (t *BaseCtx) GetStart() time.Time {
	return t.Start
}

// Elapsed returns the time spent since the context was created.
func (t *BaseCtx) Elapsed() time.Duration {
	return time.Since(t.Start)
}
