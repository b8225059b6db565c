package dashauth

import (
	"context"

	"github.com/google/uuid"
)

type operationIDContextKey struct{}

// WithOperationID tags every transition dispatched under ctx with id. When
// unset, each Controller procedure generates its own.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDContextKey{}, id)
}

// OperationIDFromContext returns the id set by WithOperationID.
func OperationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, _ := ctx.Value(operationIDContextKey{}).(string)
	return id, id != ""
}

// ensureOperationID returns ctx carrying an operation id, adding a fresh
// one if needed. Nested procedures (checkCookieAuthentication calling
// authenticate, expireSession calling logout) share the outer id.
func ensureOperationID(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := OperationIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithOperationID(ctx, id), id
}
