// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskflow implements the task orchestration protocol spoken between
// agentic applications: a JSON-RPC surface for submitting work to an agent,
// an immutable task/history data model, and the update-merge algorithm that
// folds incremental handler output into persisted task snapshots.
//
// The root package holds the wire data model and the pure merge algorithm.
// The engine that drives task handlers lives in the server package; storage
// backends live in the task package; the HTTP/SSE boundary lives in the
// transport package.
package taskflow

// Version is the current version of the taskflow protocol.
const Version = "1.0.0"

// Protocol path constants.
const (
	// AgentCardWellKnownPath is the standard path for retrieving an agent's
	// public AgentCard, following the well-known URI pattern.
	AgentCardWellKnownPath = "/.well-known/agent.json"

	// DefaultRPCPath is the default URL path for the JSON-RPC endpoint.
	DefaultRPCPath = "/"
)

// TaskState represents the lifecycle state of a Task.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been received but work has
	// not started.
	TaskStateSubmitted TaskState = "submitted"

	// TaskStateWorking indicates a handler is processing the task.
	TaskStateWorking TaskState = "working"

	// TaskStateInputRequired indicates the handler is waiting for another
	// message from the caller before it can continue.
	TaskStateInputRequired TaskState = "input-required"

	// TaskStateCompleted indicates the task finished successfully.
	TaskStateCompleted TaskState = "completed"

	// TaskStateCanceled indicates the task was canceled by request.
	TaskStateCanceled TaskState = "canceled"

	// TaskStateFailed indicates the task ended with an error.
	TaskStateFailed TaskState = "failed"
)

// IsTerminalTaskState reports whether state closes a task's current round of
// work. Terminal tasks are not deleted; a later message reopens them with a
// fresh submitted status (history is preserved).
func IsTerminalTaskState(state TaskState) bool {
	return state == TaskStateCompleted ||
		state == TaskStateFailed ||
		state == TaskStateCanceled
}

// IsFinalStreamState reports whether state ends a streaming subscription.
// Unlike IsTerminalTaskState it includes input-required: the stream stops
// because the handler cannot proceed without a new message, even though the
// task itself remains open.
func IsFinalStreamState(state TaskState) bool {
	return IsTerminalTaskState(state) || state == TaskStateInputRequired
}

// AgentCapabilities defines optional capabilities supported by an agent.
type AgentCapabilities struct {
	// true if the agent supports SSE streaming via tasks/sendSubscribe.
	Streaming bool `json:"streaming,omitzero"`

	// true if the agent can push updates to a client-supplied endpoint.
	PushNotifications bool `json:"pushNotifications,omitzero"`

	// true if the agent exposes status change history for tasks.
	StateTransitionHistory bool `json:"stateTransitionHistory,omitzero"`
}

// AgentSkill represents a unit of capability that an agent can perform.
type AgentSkill struct {
	// Unique identifier for the agent's skill.
	ID string `json:"id"`

	// Human readable name of the skill.
	Name string `json:"name"`

	// Description of the skill, used by the client or a human as a hint.
	Description string `json:"description,omitzero"`

	// Set of tagwords describing classes of capabilities for this skill.
	Tags []string `json:"tags,omitzero"`

	// Example scenarios that the skill can perform.
	Examples []string `json:"examples,omitzero"`
}

// AgentCard conveys key information about an agent: overall details, the
// skills it can perform, and its protocol capabilities. It is served
// statically at [AgentCardWellKnownPath].
type AgentCard struct {
	// Human readable name of the agent.
	Name string `json:"name"`

	// A human-readable description of the agent.
	Description string `json:"description,omitzero"`

	// A URL to the address the agent is hosted at.
	URL string `json:"url"`

	// The version of the agent - format is up to the provider.
	Version string `json:"version"`

	// Optional capabilities supported by the agent.
	Capabilities AgentCapabilities `json:"capabilities"`

	// Skills are a unit of capability that an agent can perform.
	Skills []AgentSkill `json:"skills,omitzero"`
}
