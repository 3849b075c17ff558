// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package taskflow

import (
	"fmt"
	"maps"
	"strings"
)

// Role represents the role of a message sender.
type Role string

// Role constants for message senders.
const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message represents one exchange in a task's conversation. Messages are
// immutable once appended to a task's history.
type Message struct {
	Role     Role           `json:"role"`
	Parts    []*PartWrapper `json:"parts"`
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Message is valid.
func (m *Message) Validate() error {
	if m.Role != RoleAgent && m.Role != RoleUser {
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if len(m.Parts) == 0 {
		return fmt.Errorf("message must contain at least one part")
	}
	for i, part := range m.Parts {
		if part == nil {
			return fmt.Errorf("message part at index %d cannot be nil", i)
		}
		if err := part.Validate(); err != nil {
			return fmt.Errorf("message part at index %d is invalid: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Parts = clonePartWrappers(m.Parts)
	cp.Metadata = maps.Clone(m.Metadata)
	return &cp
}

// cloneMessages deep-copies a message list.
func cloneMessages(messages []*Message) []*Message {
	if messages == nil {
		return nil
	}
	out := make([]*Message, len(messages))
	for i, m := range messages {
		out[i] = m.Clone()
	}
	return out
}

// NewUserTextMessage creates a user message containing a single TextPart.
func NewUserTextMessage(text string) *Message {
	return &Message{
		Role:  RoleUser,
		Parts: []*PartWrapper{NewPartWrapper(&TextPart{Kind: "text", Text: text})},
	}
}

// NewAgentTextMessage creates an agent message containing a single TextPart.
func NewAgentTextMessage(text string) *Message {
	return &Message{
		Role:  RoleAgent,
		Parts: []*PartWrapper{NewPartWrapper(&TextPart{Kind: "text", Text: text})},
	}
}

// GetTextParts extracts text content from all TextPart entries in a part list.
func GetTextParts(parts []*PartWrapper) []string {
	var texts []string
	for _, part := range parts {
		if part == nil {
			continue
		}
		if tp, ok := part.GetPart().(*TextPart); ok {
			texts = append(texts, tp.Text)
		}
	}
	return texts
}

// GetMessageText extracts and joins all text content from a message's parts.
// It returns an empty string if no text parts are found.
func GetMessageText(message *Message, delimiter string) string {
	if message == nil {
		return ""
	}
	return strings.Join(GetTextParts(message.Parts), delimiter)
}
