package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// ProtocolVersion is the MCP revision returned from initialize.
	ProtocolVersion = "2024-11-05"
	// ServerName identifies this server in initialize.
	ServerName = "aionr2"
)

// Options configures a Server. Zero values are usable.
type Options struct {
	Version         string
	Logger          *slog.Logger
	Recorder        Recorder
	MaxMessageBytes int
}

type handlerFunc func(ctx context.Context, req *Request) (any, error)

// Server reads one message at a time, dispatches it to completion and writes
// the response before reading the next message.
type Server struct {
	registry        *Registry
	gateway         Gateway
	impl            *sdk.Implementation
	logger          *slog.Logger
	recorder        Recorder
	maxMessageBytes int
	handlers        map[string]handlerFunc
	now             func() time.Time
}

// NewServer wires a dispatcher around an immutable registry and gateway.
func NewServer(registry *Registry, gateway Gateway, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		registry:        registry,
		gateway:         gateway,
		impl:            &sdk.Implementation{Name: ServerName, Version: version},
		logger:          logger,
		recorder:        opts.Recorder,
		maxMessageBytes: opts.MaxMessageBytes,
		now:             time.Now,
	}
	s.handlers = map[string]handlerFunc{
		"initialize":     s.handleInitialize,
		"tools/list":     s.handleToolsList,
		"tools/call":     s.handleToolsCall,
		"resources/list": s.handleResourcesList,
	}
	return s
}

// Serve runs the read-dispatch-write loop until in reaches end of input.
// It returns nil on a clean end of input and an error only when a read or
// write on the underlying streams fails.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := NewReader(in, s.maxMessageBytes)
	writer := NewWriter(out)

	for {
		payload, err := reader.Read()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.logger.Info("input closed, shutting down")
			return nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			s.logger.Warn("input closed inside a frame, shutting down", "error", err)
			return nil
		case errors.Is(err, ErrEmptyFrame):
			s.logger.Debug("skipping frame without content", "error", err)
			continue
		case errors.Is(err, ErrFrameTooLarge):
			s.logger.Warn("skipping oversized frame", "error", err)
			continue
		default:
			return fmt.Errorf("failed to read message: %w", err)
		}

		resp := s.Handle(ctx, payload)
		if resp == nil {
			continue
		}
		encoded, err := Encode(resp)
		if err != nil {
			s.logger.Error("failed to encode response", "error", err)
			encoded, err = Encode(newErrorResponse(resp.ID, toRPCError(err)))
			if err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
		}
		if err := writer.Write(encoded); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
}

// Handle processes a single message body. It returns nil when no response
// must be written, which is the case for every notification.
func (s *Server) Handle(ctx context.Context, payload []byte) *Response {
	req, err := Decode(payload)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Notification {
			s.logger.Warn("dropping malformed notification", "error", err)
			return nil
		}
		s.logger.Warn("rejecting malformed message", "error", err)
		var id json.RawMessage
		if decodeErr != nil {
			id = decodeErr.ID
		}
		return newErrorResponse(id, toRPCError(err))
	}

	start := s.now()
	result, err := s.dispatch(ctx, req)
	s.logger.Debug("handled request",
		"method", req.Method,
		"id", string(req.ID),
		"duration", time.Since(start),
		"ok", err == nil,
	)

	if req.IsNotification() {
		if err != nil {
			s.logger.Warn("notification failed", "method", req.Method, "error", err)
		}
		return nil
	}
	if err != nil {
		return newErrorResponse(req.ID, toRPCError(err))
	}

	raw, err := marshalResult(result)
	if err != nil {
		return newErrorResponse(req.ID, toRPCError(internalError(err)))
	}
	return newResultResponse(req.ID, raw)
}

func (s *Server) dispatch(ctx context.Context, req *Request) (result any, err error) {
	handler, ok := s.handlers[req.Method]
	if !ok {
		return nil, methodNotFound(req.Method)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panicked", "method", req.Method, "panic", r)
			result, err = nil, internalError(fmt.Errorf("panic: %v", r))
		}
	}()
	return handler(ctx, req)
}

func (s *Server) handleInitialize(_ context.Context, req *Request) (any, error) {
	if len(req.Params) > 0 {
		var params struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		if err := json.Unmarshal(req.Params, &params); err == nil && params.ProtocolVersion != "" {
			s.logger.Info("client initialized", "client_protocol_version", params.ProtocolVersion)
		}
	}
	return initializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo:      s.impl,
		Server:          s.impl,
	}, nil
}

func (s *Server) handleToolsList(_ context.Context, _ *Request) (any, error) {
	return listToolsResult{Tools: s.registry.Definitions()}, nil
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) (any, error) {
	const method = "tools/call"

	if len(req.Params) == 0 {
		return nil, missingField(method, "name")
	}
	var params toolsCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, invalidParams(method, err.Error())
	}
	if params.Name == nil || *params.Name == "" {
		return nil, missingField(method, "name")
	}
	name := *params.Name

	start := s.now()
	result, err := s.callTool(ctx, name, params)
	s.record(ctx, req, name, start, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Server) callTool(ctx context.Context, name string, params toolsCallParams) (json.RawMessage, error) {
	tool, ok := s.registry.Lookup(name)
	if !ok {
		return nil, toolNotFound(name)
	}

	rawInputs := params.Inputs
	if len(rawInputs) == 0 || isNull(rawInputs) {
		rawInputs = params.Arguments
	}
	inputs := map[string]json.RawMessage{}
	if len(rawInputs) > 0 && !isNull(rawInputs) {
		if err := json.Unmarshal(rawInputs, &inputs); err != nil {
			return nil, invalidParams(name, "inputs must be a JSON object")
		}
	}
	if err := tool.Validate(inputs); err != nil {
		return nil, err
	}

	s.logger.Info("executing tool", "tool", name)
	result, err := tool.Invoke(ctx, s.gateway, inputs)
	if err != nil {
		var classified *Error
		if errors.As(err, &classified) {
			return nil, classified
		}
		return nil, toolFailure(err)
	}
	return result, nil
}

func (s *Server) record(ctx context.Context, req *Request, tool string, start time.Time, err error) {
	if s.recorder == nil {
		return
	}
	inv := Invocation{
		RequestID: string(req.ID),
		Tool:      tool,
		StartedAt: start,
		Duration:  s.now().Sub(start),
	}
	if err != nil {
		rpcErr := toRPCError(err)
		inv.Code = rpcErr.Code
		inv.Message = rpcErr.Message
	}
	if recErr := s.recorder.Record(ctx, inv); recErr != nil {
		s.logger.Warn("failed to record tool invocation", "tool", tool, "error", recErr)
	}
}

func (s *Server) handleResourcesList(ctx context.Context, req *Request) (any, error) {
	var params resourcesListParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, invalidParams("resources/list", err.Error())
		}
	}
	if params.URI == "" {
		return listResourcesResult{Resources: resourceDefinitions()}, nil
	}

	entry, ok := lookupResource(params.URI)
	if !ok {
		return json.RawMessage("[]"), nil
	}
	result, err := entry.fetch(ctx, s.gateway)
	if err != nil {
		return nil, toolFailure(err)
	}
	return result, nil
}

func marshalResult(result any) (json.RawMessage, error) {
	if raw, ok := result.(json.RawMessage); ok {
		if len(bytes.TrimSpace(raw)) == 0 {
			return json.RawMessage("null"), nil
		}
		if !json.Valid(raw) {
			return nil, errors.New("result is not valid JSON")
		}
		return raw, nil
	}
	return json.Marshal(result)
}
