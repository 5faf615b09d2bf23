package mcp

import (
	"errors"
	"fmt"
)

// Standard JSON-RPC/MCP error codes used in this project.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	CodeToolError = -32000
)

// ErrorKind classifies a request failure. The kind alone decides the wire code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindParse
	KindInvalidRequest
	KindMethodNotFound
	KindInvalidParams
	KindToolFailure
)

// Code returns the JSON-RPC error code for the kind.
func (k ErrorKind) Code() int {
	switch k {
	case KindParse:
		return CodeParseError
	case KindInvalidRequest:
		return CodeInvalidRequest
	case KindMethodNotFound:
		return CodeMethodNotFound
	case KindInvalidParams:
		return CodeInvalidParams
	case KindToolFailure:
		return CodeToolError
	default:
		return CodeInternalError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindInvalidRequest:
		return "invalid request"
	case KindMethodNotFound:
		return "method not found"
	case KindInvalidParams:
		return "invalid params"
	case KindToolFailure:
		return "tool failure"
	default:
		return "internal error"
	}
}

// Error is a classified failure raised while handling a request.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func methodNotFound(method string) *Error {
	return &Error{Kind: KindMethodNotFound, Message: fmt.Sprintf("Method not found: %s", method)}
}

func toolNotFound(name string) *Error {
	return &Error{Kind: KindMethodNotFound, Message: fmt.Sprintf("Method not found: tool '%s' is not registered", name)}
}

func invalidParams(method, details string) *Error {
	return &Error{
		Kind:    KindInvalidParams,
		Message: fmt.Sprintf("Invalid parameters for method '%s': %s", method, details),
	}
}

func missingField(method, field string) *Error {
	return invalidParams(method, fmt.Sprintf("missing required field '%s'", field))
}

// toolFailure keeps the gateway's own text as the message.
func toolFailure(err error) *Error {
	return &Error{Kind: KindToolFailure, Message: err.Error(), Err: err}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf("Internal error: %v", err), Err: err}
}

// classify returns err as an *Error, treating anything unclassified as internal.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internalError(err)
}

// toRPCError is the single place where failures become wire error objects.
func toRPCError(err error) *RPCError {
	e := classify(err)
	return &RPCError{Code: e.Kind.Code(), Message: e.Message}
}
