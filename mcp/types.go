package mcp

import (
	"encoding/json"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const jsonRPCVersion = "2.0"

// Request represents a JSON-RPC 2.0 request or notification.
// A request without an ID is a notification and never receives a response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carried no id member.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response represents a JSON-RPC 2.0 response payload.
// Exactly one of Result or Error is set. A nil ID is written as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func newResultResponse(id json.RawMessage, result json.RawMessage) *Response {
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return &Response{JSONRPC: jsonRPCVersion, ID: id, Result: result}
}

func newErrorResponse(id json.RawMessage, rpcErr *RPCError) *Response {
	return &Response{JSONRPC: jsonRPCVersion, ID: id, Error: rpcErr}
}

type initializeResult struct {
	ProtocolVersion string              `json:"protocolVersion"`
	Capabilities    serverCapabilities  `json:"capabilities"`
	ServerInfo      *sdk.Implementation `json:"serverInfo"`
	Server          *sdk.Implementation `json:"server"`
}

type serverCapabilities struct {
	Tools     struct{} `json:"tools"`
	Resources struct{} `json:"resources"`
}

type listToolsResult struct {
	Tools []*sdk.Tool `json:"tools"`
}

type listResourcesResult struct {
	Resources []*sdk.Resource `json:"resources"`
}

type toolsCallParams struct {
	Name      *string         `json:"name"`
	Inputs    json.RawMessage `json:"inputs,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type resourcesListParams struct {
	URI string `json:"uri"`
}
