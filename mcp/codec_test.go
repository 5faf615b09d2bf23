package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantMethod   string
		wantID       string
		notification bool
		wantParams   string
	}{
		{name: "numeric id", raw: `{"jsonrpc":"2.0","method":"initialize","id":1}`, wantMethod: "initialize", wantID: "1"},
		{name: "string id", raw: `{"jsonrpc":"2.0","method":"tools/list","id":"abc"}`, wantMethod: "tools/list", wantID: `"abc"`},
		{name: "null id", raw: `{"jsonrpc":"2.0","method":"tools/list","id":null}`, wantMethod: "tools/list", wantID: "null"},
		{name: "notification", raw: `{"jsonrpc":"2.0","method":"notifications/initialized"}`, wantMethod: "notifications/initialized", notification: true},
		{name: "params kept", raw: `{"jsonrpc":"2.0","method":"tools/call","id":2,"params":{"name":"x"}}`, wantMethod: "tools/call", wantID: "2", wantParams: `{"name":"x"}`},
		{name: "null params dropped", raw: `{"jsonrpc":"2.0","method":"tools/list","id":3,"params":null}`, wantMethod: "tools/list", wantID: "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Method != tt.wantMethod {
				t.Fatalf("method: got %q, want %q", req.Method, tt.wantMethod)
			}
			if req.IsNotification() != tt.notification {
				t.Fatalf("notification: got %v, want %v", req.IsNotification(), tt.notification)
			}
			if string(req.ID) != tt.wantID {
				t.Fatalf("id: got %q, want %q", req.ID, tt.wantID)
			}
			if string(req.Params) != tt.wantParams {
				t.Fatalf("params: got %q, want %q", req.Params, tt.wantParams)
			}
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantCode     int
		wantID       string
		notification bool
	}{
		{name: "invalid json", raw: `{"jsonrpc":"2.0",`, wantCode: CodeParseError},
		{name: "garbage", raw: `not json`, wantCode: CodeParseError},
		{name: "array", raw: `[1,2]`, wantCode: CodeInvalidRequest},
		{name: "scalar", raw: `42`, wantCode: CodeInvalidRequest},
		{name: "json null", raw: `null`, wantCode: CodeInvalidRequest},
		{name: "wrong version", raw: `{"jsonrpc":"1.0","method":"x","id":7}`, wantCode: CodeInvalidRequest, wantID: "7"},
		{name: "missing version", raw: `{"method":"x","id":"q"}`, wantCode: CodeInvalidRequest, wantID: `"q"`},
		{name: "missing method", raw: `{"jsonrpc":"2.0","id":8}`, wantCode: CodeInvalidRequest, wantID: "8"},
		{name: "method not string", raw: `{"jsonrpc":"2.0","method":5,"id":9}`, wantCode: CodeInvalidRequest, wantID: "9"},
		{name: "empty method", raw: `{"jsonrpc":"2.0","method":"","id":10}`, wantCode: CodeInvalidRequest, wantID: "10"},
		{name: "object id", raw: `{"jsonrpc":"2.0","method":"x","id":{"a":1}}`, wantCode: CodeInvalidRequest},
		{name: "invalid notification", raw: `{"jsonrpc":"2.0"}`, wantCode: CodeInvalidRequest, notification: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			if err == nil {
				t.Fatalf("expected error")
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if got := toRPCError(err).Code; got != tt.wantCode {
				t.Fatalf("code: got %d, want %d", got, tt.wantCode)
			}
			if string(decodeErr.ID) != tt.wantID {
				t.Fatalf("id: got %q, want %q", decodeErr.ID, tt.wantID)
			}
			if decodeErr.Notification != tt.notification {
				t.Fatalf("notification: got %v, want %v", decodeErr.Notification, tt.notification)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
	}{
		{name: "object result", resp: newResultResponse(json.RawMessage(`1`), json.RawMessage(`{"status":"ok"}`))},
		{name: "null result", resp: newResultResponse(json.RawMessage(`"x"`), json.RawMessage(`null`))},
		{name: "array result", resp: newResultResponse(json.RawMessage(`2`), json.RawMessage(`[1,"two",{"three":3}]`))},
		{name: "error with data", resp: newErrorResponse(json.RawMessage(`3`), &RPCError{Code: CodeInvalidParams, Message: "bad", Data: json.RawMessage(`{"field":"prompt"}`)})},
		{name: "error null id", resp: newErrorResponse(nil, &RPCError{Code: CodeParseError, Message: "Parse error: x"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.resp)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			decoded, err := DecodeResponse(encoded)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			assertSameResponse(t, decoded, tt.resp)
		})
	}
}

func TestEncodeRejectsAmbiguousResponses(t *testing.T) {
	both := &Response{JSONRPC: jsonRPCVersion, ID: json.RawMessage(`1`), Result: json.RawMessage(`{}`), Error: &RPCError{Code: 1}}
	if _, err := Encode(both); err == nil {
		t.Fatalf("expected error for response with result and error")
	}
	neither := &Response{JSONRPC: jsonRPCVersion, ID: json.RawMessage(`1`)}
	if _, err := Encode(neither); err == nil {
		t.Fatalf("expected error for response with neither result nor error")
	}
}

func TestEncodeWritesNullID(t *testing.T) {
	encoded, err := Encode(newErrorResponse(nil, &RPCError{Code: CodeParseError, Message: "x"}))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Contains(encoded, []byte(`"id":null`)) {
		t.Fatalf("expected explicit null id, got %s", encoded)
	}
}

func assertSameResponse(t *testing.T, got, want *Response) {
	t.Helper()
	if got.JSONRPC != want.JSONRPC {
		t.Fatalf("jsonrpc: got %q, want %q", got.JSONRPC, want.JSONRPC)
	}
	if !bytes.Equal(got.ID, want.ID) {
		t.Fatalf("id: got %q, want %q", got.ID, want.ID)
	}
	if !bytes.Equal(got.Result, want.Result) {
		t.Fatalf("result: got %s, want %s", got.Result, want.Result)
	}
	if (got.Error == nil) != (want.Error == nil) {
		t.Fatalf("error presence: got %+v, want %+v", got.Error, want.Error)
	}
	if want.Error != nil {
		if got.Error.Code != want.Error.Code || got.Error.Message != want.Error.Message || !bytes.Equal(got.Error.Data, want.Error.Data) {
			t.Fatalf("error: got %+v, want %+v", got.Error, want.Error)
		}
	}
}
