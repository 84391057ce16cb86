package services

import "context"

type contextKey string

const (
	agentKey     contextKey = "agent"
	operationKey contextKey = "operation"
	requestIDKey contextKey = "request_id"
)

// WithAgent annotates context with the name of the agent being contacted.
func WithAgent(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, agentKey, name)
}

// AgentFromContext returns the agent name if present.
func AgentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(agentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithOperation annotates context with the manager operation being served
// (categories, item, ignore, delete).
func WithOperation(ctx context.Context, op string) context.Context {
	if op == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, op)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
