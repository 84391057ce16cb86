package services_test

import (
	"context"
	"testing"

	"shelfsync/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithAgent(ctx, "nas-1")
	ctx = services.WithOperation(ctx, "categories")
	ctx = services.WithRequestID(ctx, "req-123")

	if name, ok := services.AgentFromContext(ctx); !ok || name != "nas-1" {
		t.Fatalf("unexpected agent: %v %v", name, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "categories" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithAgent(ctx, "")
	ctx = services.WithOperation(ctx, "")
	if _, ok := services.AgentFromContext(ctx); ok {
		t.Fatal("expected no agent value")
	}
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
}
