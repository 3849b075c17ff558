// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package taskflow

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-json-experiment/json"
)

// Part represents a piece of message or artifact content.
// It can be a text part, data part, or file part.
type Part interface {
	GetKind() string
	GetMetadata() map[string]any
	Validate() error
}

// TextPart represents a plain text segment.
type TextPart struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// GetKind returns the part kind.
func (tp TextPart) GetKind() string {
	return tp.Kind
}

// GetMetadata returns the part metadata.
func (tp TextPart) GetMetadata() map[string]any {
	return tp.Metadata
}

// Validate ensures the TextPart is valid.
func (tp TextPart) Validate() error {
	if tp.Kind != "text" {
		return fmt.Errorf("text part kind must be 'text', got '%s'", tp.Kind)
	}
	return nil
}

// DataPart represents a structured data segment.
type DataPart struct {
	Kind     string         `json:"kind"`
	Data     map[string]any `json:"data"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// GetKind returns the part kind.
func (dp DataPart) GetKind() string {
	return dp.Kind
}

// GetMetadata returns the part metadata.
func (dp DataPart) GetMetadata() map[string]any {
	return dp.Metadata
}

// Validate ensures the DataPart is valid.
func (dp DataPart) Validate() error {
	if dp.Kind != "data" {
		return fmt.Errorf("data part kind must be 'data', got '%s'", dp.Kind)
	}
	if dp.Data == nil {
		return fmt.Errorf("data part data cannot be nil")
	}
	return nil
}

// FileContent holds file data either inline (base64 bytes) or by reference (URI).
// Exactly one of Bytes or URI should be set.
type FileContent struct {
	Name     string `json:"name,omitzero"`
	MimeType string `json:"mimeType,omitzero"`
	Bytes    string `json:"bytes,omitzero"`
	URI      string `json:"uri,omitzero"`
}

// FilePart represents a file segment.
type FilePart struct {
	Kind     string         `json:"kind"`
	File     FileContent    `json:"file"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// GetKind returns the part kind.
func (fp FilePart) GetKind() string {
	return fp.Kind
}

// GetMetadata returns the part metadata.
func (fp FilePart) GetMetadata() map[string]any {
	return fp.Metadata
}

// Validate ensures the FilePart is valid.
func (fp FilePart) Validate() error {
	if fp.Kind != "file" {
		return fmt.Errorf("file part kind must be 'file', got '%s'", fp.Kind)
	}
	if fp.File.Bytes == "" && fp.File.URI == "" {
		return fmt.Errorf("file part must carry bytes or a uri")
	}
	return nil
}

// PartWrapper wraps a Part interface to enable JSON serialization of the
// kind-discriminated union.
type PartWrapper struct {
	part Part
}

// NewPartWrapper creates a new PartWrapper.
func NewPartWrapper(part Part) *PartWrapper {
	return &PartWrapper{part: part}
}

// GetPart returns the wrapped part.
func (pw *PartWrapper) GetPart() Part {
	return pw.part
}

// MarshalJSON implements custom JSON marshaling for PartWrapper.
func (pw PartWrapper) MarshalJSON() ([]byte, error) {
	if pw.part == nil {
		return nil, fmt.Errorf("cannot marshal nil part")
	}
	return json.Marshal(pw.part)
}

// UnmarshalJSON implements custom JSON unmarshaling for PartWrapper.
func (pw *PartWrapper) UnmarshalJSON(data []byte) error {
	var kind struct {
		Kind string `json:"kind"`
	}

	if err := json.Unmarshal(data, &kind); err != nil {
		return fmt.Errorf("failed to unmarshal part kind: %w", err)
	}

	switch kind.Kind {
	case "text":
		var tp TextPart
		if err := json.Unmarshal(data, &tp); err != nil {
			return fmt.Errorf("failed to unmarshal text part: %w", err)
		}
		pw.part = &tp
	case "data":
		var dp DataPart
		if err := json.Unmarshal(data, &dp); err != nil {
			return fmt.Errorf("failed to unmarshal data part: %w", err)
		}
		pw.part = &dp
	case "file":
		var fp FilePart
		if err := json.Unmarshal(data, &fp); err != nil {
			return fmt.Errorf("failed to unmarshal file part: %w", err)
		}
		pw.part = &fp
	default:
		return fmt.Errorf("unknown part kind: %s", kind.Kind)
	}

	return nil
}

// Validate validates the wrapped part.
func (pw *PartWrapper) Validate() error {
	if pw.part == nil {
		return fmt.Errorf("part wrapper cannot contain nil part")
	}
	return pw.part.Validate()
}

// Clone returns a deep copy of the wrapped part.
func (pw *PartWrapper) Clone() *PartWrapper {
	if pw == nil || pw.part == nil {
		return nil
	}
	switch p := pw.part.(type) {
	case *TextPart:
		cp := *p
		cp.Metadata = maps.Clone(p.Metadata)
		return &PartWrapper{part: &cp}
	case *DataPart:
		cp := *p
		cp.Data = maps.Clone(p.Data)
		cp.Metadata = maps.Clone(p.Metadata)
		return &PartWrapper{part: &cp}
	case *FilePart:
		cp := *p
		cp.Metadata = maps.Clone(p.Metadata)
		return &PartWrapper{part: &cp}
	default:
		return &PartWrapper{part: pw.part}
	}
}

// clonePartWrappers deep-copies a part list.
func clonePartWrappers(parts []*PartWrapper) []*PartWrapper {
	if parts == nil {
		return nil
	}
	out := make([]*PartWrapper, len(parts))
	for i, p := range parts {
		out[i] = p.Clone()
	}
	return out
}

// Artifact represents an output generated during a task. Artifacts are
// re-identified across updates by Index (a position key) or Name (an identity
// key); at least one must be usable for an update to target an existing entry.
type Artifact struct {
	// Name optionally identifies the artifact across updates.
	Name string `json:"name,omitzero"`

	// Description is free-form human readable context for the artifact.
	Description string `json:"description,omitzero"`

	// Parts is the ordered content of the artifact.
	Parts []*PartWrapper `json:"parts"`

	// Index optionally positions the artifact within the task's artifact
	// list. Artifacts without an index sort as index 0.
	Index *int `json:"index,omitzero"`

	// Append requests merge-by-concatenation semantics when this artifact
	// arrives as an update targeting an existing entry. It is a merge
	// directive, not persisted task state.
	Append bool `json:"append,omitzero"`

	// LastChunk marks the final chunk of a streamed artifact. A pointer so
	// that updates can distinguish "unset" from an explicit false.
	LastChunk *bool `json:"lastChunk,omitzero"`

	// Metadata is free-form extension data.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Artifact is valid.
func (a *Artifact) Validate() error {
	if len(a.Parts) == 0 {
		return fmt.Errorf("artifact must contain at least one part")
	}
	for i, part := range a.Parts {
		if part == nil {
			return fmt.Errorf("artifact part at index %d cannot be nil", i)
		}
		if err := part.Validate(); err != nil {
			return fmt.Errorf("artifact part at index %d is invalid: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the artifact.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Parts = clonePartWrappers(a.Parts)
	cp.Metadata = maps.Clone(a.Metadata)
	if a.Index != nil {
		idx := *a.Index
		cp.Index = &idx
	}
	if a.LastChunk != nil {
		lc := *a.LastChunk
		cp.LastChunk = &lc
	}
	return &cp
}

// indexOrZero returns the artifact's position key, treating a missing index
// as 0 for ordering purposes only.
func (a *Artifact) indexOrZero() int {
	if a == nil || a.Index == nil {
		return 0
	}
	return *a.Index
}

// sortArtifactsByIndex re-sorts the list ascending by index whenever any
// entry carries one. The sort is stable so artifacts without an explicit
// index keep insertion order relative to equal keys.
func sortArtifactsByIndex(artifacts []*Artifact) {
	indexed := false
	for _, a := range artifacts {
		if a.Index != nil {
			indexed = true
			break
		}
	}
	if !indexed {
		return
	}
	slices.SortStableFunc(artifacts, func(a, b *Artifact) int {
		return a.indexOrZero() - b.indexOrZero()
	})
}

// NewTextArtifact creates an Artifact containing a single TextPart.
func NewTextArtifact(name, text, description string) *Artifact {
	return &Artifact{
		Name:        name,
		Description: description,
		Parts:       []*PartWrapper{NewPartWrapper(&TextPart{Kind: "text", Text: text})},
	}
}

// NewDataArtifact creates an Artifact containing a single DataPart.
func NewDataArtifact(name string, data map[string]any, description string) *Artifact {
	return &Artifact{
		Name:        name,
		Description: description,
		Parts:       []*PartWrapper{NewPartWrapper(&DataPart{Kind: "data", Data: data})},
	}
}
