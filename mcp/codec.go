package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// DecodeError describes a message that could not be turned into a Request.
// ID holds whatever id could be salvaged; it is nil when none could.
type DecodeError struct {
	ID json.RawMessage
	// Notification is set when the message was a JSON object without an id member.
	Notification bool
	Err          *Error
}

func (e *DecodeError) Error() string {
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func parseFailure(err error) *DecodeError {
	return &DecodeError{Err: &Error{Kind: KindParse, Message: fmt.Sprintf("Parse error: %v", err), Err: err}}
}

func invalidEnvelope(id json.RawMessage, notification bool, details string) *DecodeError {
	return &DecodeError{
		ID:           id,
		Notification: notification,
		Err:          &Error{Kind: KindInvalidRequest, Message: "Invalid Request: " + details},
	}
}

// Decode parses one JSON-RPC 2.0 request envelope.
// Failures are always *DecodeError.
func Decode(data []byte) (*Request, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, invalidEnvelope(nil, false, "message must be a JSON object")
		}
		return nil, parseFailure(err)
	}
	if envelope == nil {
		return nil, invalidEnvelope(nil, false, "message must be a JSON object")
	}

	rawID, hasID := envelope["id"]
	if hasID && !isValidID(rawID) {
		return nil, invalidEnvelope(nil, false, "id must be a string, number, or null")
	}
	var id json.RawMessage
	if hasID {
		id = append(json.RawMessage(nil), bytes.TrimSpace(rawID)...)
	}

	var version string
	if raw, ok := envelope["jsonrpc"]; !ok || json.Unmarshal(raw, &version) != nil || version != jsonRPCVersion {
		return nil, invalidEnvelope(id, !hasID, `jsonrpc must be "2.0"`)
	}

	var method string
	rawMethod, ok := envelope["method"]
	if !ok {
		return nil, invalidEnvelope(id, !hasID, "missing method")
	}
	if err := json.Unmarshal(rawMethod, &method); err != nil || method == "" {
		return nil, invalidEnvelope(id, !hasID, "method must be a non-empty string")
	}

	req := &Request{JSONRPC: version, ID: id, Method: method}
	if params, ok := envelope["params"]; ok && !isNull(params) {
		req.Params = params
	}
	return req, nil
}

// Encode serializes a response for the wire.
func Encode(resp *Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("nil response")
	}
	if (resp.Error == nil) == (len(resp.Result) == 0) {
		return nil, errors.New("response must carry exactly one of result or error")
	}
	return json.Marshal(resp)
}

// DecodeResponse parses a response envelope as written by Encode.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.JSONRPC != jsonRPCVersion {
		return nil, fmt.Errorf("unexpected jsonrpc version %q", resp.JSONRPC)
	}
	if (resp.Error == nil) == (len(resp.Result) == 0) {
		return nil, errors.New("response must carry exactly one of result or error")
	}
	if isNull(resp.ID) {
		resp.ID = nil
	}
	return &resp, nil
}

func isValidID(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch c := trimmed[0]; {
	case c == '"', c == '-', c >= '0' && c <= '9':
		return true
	default:
		return isNull(trimmed)
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
