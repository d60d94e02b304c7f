package context

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type ctxKey string

// RequestIDKey is shared with pkg/log so log.WithRequestID can read ids stored here.
const RequestIDKey ctxKey = "request_id"

// HeaderRequestID is both the request header and the fiber Locals key holding the request id.
const HeaderRequestID = "X-Request-ID"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// FromFiberCtx builds a request-scoped context carrying the request id and bounded by timeout.
func FromFiberCtx(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	requestID, ok := c.Locals(HeaderRequestID).(string)
	if !ok || requestID == "" {
		requestID = c.Get(HeaderRequestID)

		if requestID == "" {
			requestID = "unknown"
		}
	}

	ctx := WithRequestID(context.Background(), requestID)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
