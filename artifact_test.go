// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package taskflow

import (
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
)

func TestPartWrapperUnmarshal(t *testing.T) {
	tests := map[string]struct {
		input    string
		wantKind string
		wantErr  bool
	}{
		"text part": {
			input:    `{"kind":"text","text":"hello"}`,
			wantKind: "text",
		},
		"data part": {
			input:    `{"kind":"data","data":{"answer":42}}`,
			wantKind: "data",
		},
		"file part": {
			input:    `{"kind":"file","file":{"uri":"https://example.com/f.txt"}}`,
			wantKind: "file",
		},
		"unknown kind": {
			input:   `{"kind":"video","uri":"x"}`,
			wantErr: true,
		},
		"missing kind": {
			input:   `{"text":"hello"}`,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var pw PartWrapper
			err := json.Unmarshal([]byte(tt.input), &pw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := pw.GetPart().GetKind(); got != tt.wantKind {
				t.Errorf("GetKind() = %q, want %q", got, tt.wantKind)
			}
		})
	}
}

func TestPartWrapperRoundTrip(t *testing.T) {
	original := NewPartWrapper(&DataPart{
		Kind:     "data",
		Data:     map[string]any{"answer": "42"},
		Metadata: map[string]any{"source": "test"},
	})

	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded PartWrapper
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if diff := cmp.Diff(original, &decoded, cmpOpts...); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestArtifactCloneIndependence(t *testing.T) {
	original := NewTextArtifact("report", "draft", "first pass")
	original.Index = intPtr(3)
	original.LastChunk = boolPtr(false)
	original.Metadata = map[string]any{"rev": 1}

	clone := original.Clone()
	clone.Metadata["rev"] = 2
	*clone.Index = 7
	clone.Parts[0] = NewPartWrapper(&TextPart{Kind: "text", Text: "changed"})

	if original.Metadata["rev"] != 1 {
		t.Error("clone shares metadata with original")
	}
	if *original.Index != 3 {
		t.Error("clone shares index with original")
	}
	if got := GetTextParts(original.Parts); got[0] != "draft" {
		t.Error("clone shares parts with original")
	}
}

func TestIsTerminalTaskState(t *testing.T) {
	tests := map[string]struct {
		state        TaskState
		wantTerminal bool
		wantFinal    bool
	}{
		"submitted":      {TaskStateSubmitted, false, false},
		"working":        {TaskStateWorking, false, false},
		"input-required": {TaskStateInputRequired, false, true},
		"completed":      {TaskStateCompleted, true, true},
		"canceled":       {TaskStateCanceled, true, true},
		"failed":         {TaskStateFailed, true, true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := IsTerminalTaskState(tt.state); got != tt.wantTerminal {
				t.Errorf("IsTerminalTaskState(%v) = %v, want %v", tt.state, got, tt.wantTerminal)
			}
			if got := IsFinalStreamState(tt.state); got != tt.wantFinal {
				t.Errorf("IsFinalStreamState(%v) = %v, want %v", tt.state, got, tt.wantFinal)
			}
		})
	}
}
