package consolidate

import (
	"context"

	"shelfsync/internal/services"
)

func contextFor(ctx context.Context, agent, operation string) context.Context {
	ctx = services.WithAgent(ctx, agent)
	if _, ok := services.OperationFromContext(ctx); !ok {
		ctx = services.WithOperation(ctx, operation)
	}
	return ctx
}
