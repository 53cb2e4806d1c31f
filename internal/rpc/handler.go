package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/workspace-lens/internal/logger"
	"github.com/alucardeht/workspace-lens/internal/tools"
	"github.com/alucardeht/workspace-lens/pkg/protocol"
)

var log = logger.ForComponent("rpc")

const defaultCallTimeout = 2 * time.Minute

type Handler struct {
	registry *tools.Registry
	timeout  time.Duration
}

func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{
		registry: registry,
		timeout:  defaultCallTimeout,
	}
}

// Handle is a jsonrpc2.HandlerWithError callback.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &jsonrpc2.Error{
				Code:    jsonrpc2.CodeInternalError,
				Message: fmt.Sprintf("%s panicked: %v", req.Method, r),
			}
			log.Error("handler panic recovered",
				"method", req.Method,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}

	start := time.Now()

	switch req.Method {
	case protocol.MethodListMethods:
		result = h.listMethods()
	default:
		result, err = h.registry.ExecuteWithTimeout(ctx, req.Method, params, h.timeout)
	}

	if err != nil {
		log.Debug("call failed", "method", req.Method, "error", err, "duration", time.Since(start))
		return nil, toRPCError(req.Method, err)
	}

	log.Debug("call handled", "method", req.Method, "duration", time.Since(start))
	return result, nil
}

func (h *Handler) listMethods() []protocol.MethodInfo {
	list := h.registry.List()
	methods := make([]protocol.MethodInfo, 0, len(list))

	for _, t := range list {
		info := protocol.MethodInfo{
			Name:        t.Name(),
			Description: t.Description(),
			Params:      t.Schema(),
		}

		if annotated, ok := t.(tools.AnnotatedTool); ok {
			info.Title = annotated.Title()
			info.Annotations = annotated.Annotations()
		}

		methods = append(methods, info)
	}

	return methods
}

func toRPCError(method string, err error) *jsonrpc2.Error {
	te := tools.AsToolError(method, err)
	return &jsonrpc2.Error{
		Code:    int64(te.Code),
		Message: te.Message,
	}
}
