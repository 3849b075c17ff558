// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package taskflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

func TestJSONRPCMessageHasID(t *testing.T) {
	tests := map[string]struct {
		id   jsontext.Value
		want bool
	}{
		"string id": {jsontext.Value(`"req-1"`), true},
		"number id": {jsontext.Value(`42`), true},
		"null id":   {jsontext.Value(`null`), false},
		"absent id": {nil, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			msg := NewJSONRPCMessage(tt.id)
			if got := msg.HasID(); got != tt.want {
				t.Errorf("HasID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONRPCResponseSerialization(t *testing.T) {
	resp := NewJSONRPCErrorResponse(jsontext.Value(`null`), NewTaskNotFoundError("task-1").RPCError())

	encoded, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded struct {
		JSONRPC string         `json:"jsonrpc"`
		ID      jsontext.Value `json:"id"`
		Error   *JSONRPCError  `json:"error"`
	}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.JSONRPC != "2.0" {
		t.Errorf("jsonrpc = %q, want 2.0", decoded.JSONRPC)
	}
	if string(decoded.ID) != "null" {
		t.Errorf("id = %s, want null", decoded.ID)
	}
	if decoded.Error == nil || decoded.Error.Code != TaskNotFoundErrorCode {
		t.Errorf("error = %+v, want code %d", decoded.Error, TaskNotFoundErrorCode)
	}
}

func TestNormalizeError(t *testing.T) {
	tests := map[string]struct {
		err      error
		wantCode int
	}{
		"protocol error passes through": {
			err:      NewTaskNotCancelableError("task-1"),
			wantCode: TaskNotCancelableErrorCode,
		},
		"wrapped protocol error passes through": {
			err:      fmt.Errorf("dispatch: %w", NewTaskNotFoundError("task-1")),
			wantCode: TaskNotFoundErrorCode,
		},
		"plain error becomes internal": {
			err:      errors.New("disk on fire"),
			wantCode: InternalErrorCode,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := NormalizeError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", got.Code, tt.wantCode)
			}
		})
	}

	if NormalizeError(nil) != nil {
		t.Error("NormalizeError(nil) != nil")
	}
}

func TestNormalizeErrorPreservesCauseText(t *testing.T) {
	got := NormalizeError(errors.New("disk on fire"))
	if got.Data != "disk on fire" {
		t.Errorf("data = %v, want original error text", got.Data)
	}
}
