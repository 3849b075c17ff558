// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package taskflow

import (
	"fmt"
	"maps"
)

// TaskStatus represents the current status of a task. The timestamp is set
// exclusively by the engine on every mutation; client-supplied values are
// discarded.
type TaskStatus struct {
	State TaskState `json:"state"`

	// Message is the most recent status-carrying message, if any.
	Message *Message `json:"message,omitzero"`

	// Timestamp is the RFC 3339 time of the last status mutation.
	Timestamp string `json:"timestamp,omitzero"`
}

// Validate ensures the TaskStatus is valid.
func (s TaskStatus) Validate() error {
	switch s.State {
	case TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired,
		TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
	default:
		return fmt.Errorf("invalid task state: %s", s.State)
	}
	if s.Message != nil {
		if err := s.Message.Validate(); err != nil {
			return fmt.Errorf("status message is invalid: %w", err)
		}
	}
	return nil
}

// Task represents the persisted unit of work, identified by a caller-chosen
// id. Exactly one Task record exists per id; terminal states are just state,
// the record is never deleted by the engine.
type Task struct {
	// ID is the stable, caller-chosen task identity.
	ID string `json:"id"`

	// SessionID is an opaque grouping key, generated when not supplied.
	SessionID string `json:"sessionId,omitzero"`

	// Status is the current lifecycle status.
	Status TaskStatus `json:"status"`

	// Artifacts is the ordered list of outputs produced so far.
	Artifacts []*Artifact `json:"artifacts,omitzero"`

	// Metadata is free-form extension data.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the Task is valid.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if err := t.Status.Validate(); err != nil {
		return fmt.Errorf("task status is invalid: %w", err)
	}
	for i, artifact := range t.Artifacts {
		if artifact == nil {
			return fmt.Errorf("artifact at index %d cannot be nil", i)
		}
		if err := artifact.Validate(); err != nil {
			return fmt.Errorf("artifact at index %d is invalid: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Status.Message = t.Status.Message.Clone()
	if t.Artifacts != nil {
		cp.Artifacts = make([]*Artifact, len(t.Artifacts))
		for i, a := range t.Artifacts {
			cp.Artifacts[i] = a.Clone()
		}
	}
	cp.Metadata = maps.Clone(t.Metadata)
	return &cp
}

// TaskAndHistory is the atomic snapshot unit pairing a task with its
// append-only message history. All mutation flows through [ApplyUpdate] or
// the server lifecycle controller and produces a new snapshot; no component
// may alias or mutate a previously returned snapshot.
type TaskAndHistory struct {
	Task    *Task      `json:"task"`
	History []*Message `json:"history"`
}

// Clone returns a deep copy of the snapshot.
func (s *TaskAndHistory) Clone() *TaskAndHistory {
	if s == nil {
		return nil
	}
	return &TaskAndHistory{
		Task:    s.Task.Clone(),
		History: cloneMessages(s.History),
	}
}

// TaskSendParams carries the parameters of tasks/send and tasks/sendSubscribe.
type TaskSendParams struct {
	// ID is the caller-chosen task id.
	ID string `json:"id"`

	// SessionID optionally groups related tasks.
	SessionID string `json:"sessionId,omitzero"`

	// Message is the message to deliver to the task.
	Message *Message `json:"message"`

	// Metadata is free-form extension data recorded on task creation.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the TaskSendParams are valid.
func (p *TaskSendParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if p.Message == nil {
		return fmt.Errorf("message cannot be nil")
	}
	return p.Message.Validate()
}

// TaskQueryParams carries the parameters of tasks/get.
type TaskQueryParams struct {
	// ID is the task id to retrieve.
	ID string `json:"id"`

	// HistoryLength optionally limits the included history, newest first.
	HistoryLength *int `json:"historyLength,omitzero"`
}

// Validate ensures the TaskQueryParams are valid.
func (p *TaskQueryParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if p.HistoryLength != nil && *p.HistoryLength < 0 {
		return fmt.Errorf("history length cannot be negative")
	}
	return nil
}

// TaskIDParams carries the parameters of operations addressing a task by id.
type TaskIDParams struct {
	// ID is the task id to operate on.
	ID string `json:"id"`

	// Metadata is free-form extension data.
	Metadata map[string]any `json:"metadata,omitzero"`
}

// Validate ensures the TaskIDParams are valid.
func (p *TaskIDParams) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	return nil
}

// AuthenticationInfo describes how a push notification endpoint expects to
// be authenticated.
type AuthenticationInfo struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitzero"`
}

// PushNotificationConfig describes an endpoint for server-initiated task
// notifications. Declared for wire compatibility; this engine does not
// deliver push notifications and answers the related methods accordingly.
type PushNotificationConfig struct {
	URL            string              `json:"url"`
	Token          string              `json:"token,omitzero"`
	Authentication *AuthenticationInfo `json:"authentication,omitzero"`
}

// TaskPushNotificationConfig binds a [PushNotificationConfig] to a task id.
type TaskPushNotificationConfig struct {
	ID                     string                 `json:"id"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}

// Validate checks that the config names a task and an endpoint.
func (p *TaskPushNotificationConfig) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if p.PushNotificationConfig.URL == "" {
		return fmt.Errorf("push notification URL cannot be empty")
	}
	return nil
}

// TaskEvent is the union of outbound streaming events for a
// tasks/sendSubscribe subscription.
type TaskEvent interface {
	// EventTaskID returns the task id the event is for.
	EventTaskID() string

	// EventFinal reports whether the event ends the subscription.
	EventFinal() bool
}

// TaskStatusUpdateEvent notifies a subscriber of a task status change.
type TaskStatusUpdateEvent struct {
	ID     string     `json:"id"`
	Status TaskStatus `json:"status"`
	Final  bool       `json:"final"`
}

var _ TaskEvent = (*TaskStatusUpdateEvent)(nil)

// EventTaskID implements [TaskEvent].
func (e *TaskStatusUpdateEvent) EventTaskID() string { return e.ID }

// EventFinal implements [TaskEvent].
func (e *TaskStatusUpdateEvent) EventFinal() bool { return e.Final }

// TaskArtifactUpdateEvent notifies a subscriber of new artifact content.
// Artifact events never end the subscription by themselves.
type TaskArtifactUpdateEvent struct {
	ID       string    `json:"id"`
	Artifact *Artifact `json:"artifact"`
	Final    bool      `json:"final"`
}

var _ TaskEvent = (*TaskArtifactUpdateEvent)(nil)

// EventTaskID implements [TaskEvent].
func (e *TaskArtifactUpdateEvent) EventTaskID() string { return e.ID }

// EventFinal implements [TaskEvent].
func (e *TaskArtifactUpdateEvent) EventFinal() bool { return e.Final }
