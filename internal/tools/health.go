package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alucardeht/workspace-lens/pkg/protocol"
)

// StatusSource is what health reports on.
type StatusSource interface {
	Root() string
	Status() (packages int, loaded bool, lastErr error)
}

type HealthTool struct {
	source    StatusSource
	startTime time.Time
}

func NewHealthTool(source StatusSource) *HealthTool {
	return &HealthTool{
		source:    source,
		startTime: time.Now(),
	}
}

func (t *HealthTool) Name() string {
	return "health"
}

func (t *HealthTool) Description() string {
	return "Report server uptime and package cache state"
}

func (t *HealthTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *HealthTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	resp := protocol.HealthResponse{
		Status: "healthy",
		Uptime: int64(time.Since(t.startTime).Seconds()),
	}

	if t.source != nil {
		packages, loaded, lastErr := t.source.Status()
		resp.Root = t.source.Root()
		resp.Packages = packages
		resp.Loaded = loaded
		if lastErr != nil {
			resp.Status = "degraded"
			resp.LastError = lastErr.Error()
		}
	}

	return resp, nil
}

type PingTool struct{}

func (t *PingTool) Name() string {
	return "ping"
}

func (t *PingTool) Description() string {
	return "Check that the server answers"
}

func (t *PingTool) Schema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *PingTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return map[string]interface{}{}, nil
}
