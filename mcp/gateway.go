package mcp

import (
	"context"
	"encoding/json"
	"time"
)

// Gateway is the backend capability provider behind the tools.
// Any returned error is reported to the client as a tool failure carrying the error text.
type Gateway interface {
	RunInference(ctx context.Context, model, prompt string, params json.RawMessage) (json.RawMessage, error)
	DataAnalysis(ctx context.Context, data, ops json.RawMessage) (json.RawMessage, error)
	ListModels(ctx context.Context) (json.RawMessage, error)
}

// Invocation describes the outcome of one tools/call request.
// Code is 0 on success.
type Invocation struct {
	RequestID string
	Tool      string
	Code      int
	Message   string
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder persists invocation outcomes.
type Recorder interface {
	Record(ctx context.Context, inv Invocation) error
}
