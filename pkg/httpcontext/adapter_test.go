package httpcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/bizdesk/pkg/logger"
)

func TestAdapter_AttachPropagatesRequestID(t *testing.T) {
	adapter := NewAdapter(context.Background(), time.Second)

	var reqCtx fasthttp.RequestCtx
	reqCtx.Request.Header.Set("X-Request-ID", "req-7")
	reqCtx.Request.Header.SetUserAgent("bizdesk-test")

	ctx, cancel := adapter.Attach(&reqCtx)
	defer cancel()

	assert.Equal(t, "req-7", appLogger.RequestID(ctx))
	assert.Equal(t, "req-7", string(reqCtx.Response.Header.Peek("X-Request-ID")))
	assert.Equal(t, "bizdesk-test", ctx.Value(KeyUserAgent))

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestAdapter_GeneratesRequestID(t *testing.T) {
	adapter := NewAdapter(nil, 0)

	var reqCtx fasthttp.RequestCtx
	ctx, cancel := adapter.Attach(&reqCtx)
	defer cancel()

	assert.NotEmpty(t, appLogger.RequestID(ctx))
}

func TestAdapter_BaseCancellation(t *testing.T) {
	base, stop := context.WithCancel(context.Background())
	adapter := NewAdapter(base, time.Minute)

	var reqCtx fasthttp.RequestCtx
	ctx, cancel := adapter.Attach(&reqCtx)
	defer cancel()

	stop()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
