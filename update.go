// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package taskflow

import (
	"maps"
	"time"
)

// UpdateKind discriminates the two update variants a handler can yield.
type UpdateKind string

const (
	// UpdateKindStatus is a task status transition.
	UpdateKindStatus UpdateKind = "status"
	// UpdateKindArtifact is new or merged artifact content.
	UpdateKindArtifact UpdateKind = "artifact"
)

// Update is the incremental unit a task handler yields. Exactly one of
// Status or Artifact is set; an Update with neither is unrecognized and
// skipped by the engine.
type Update struct {
	// Status, when set, transitions the task status.
	Status *TaskStatus `json:"status,omitzero"`

	// Artifact, when set, adds or merges artifact content.
	Artifact *Artifact `json:"artifact,omitzero"`
}

// Kind returns the update variant, or the empty string for an
// unrecognized update.
func (u Update) Kind() UpdateKind {
	switch {
	case u.Status != nil:
		return UpdateKindStatus
	case u.Artifact != nil:
		return UpdateKindArtifact
	default:
		return ""
	}
}

// NewStatusUpdate creates a status [Update] transitioning to state with an
// optional status message.
func NewStatusUpdate(state TaskState, message *Message) Update {
	return Update{
		Status: &TaskStatus{
			State:   state,
			Message: message,
		},
	}
}

// NewArtifactUpdate creates an artifact [Update].
func NewArtifactUpdate(artifact *Artifact) Update {
	return Update{Artifact: artifact}
}

// ApplyUpdate folds update into snapshot and returns the resulting snapshot.
// The inputs are never mutated; timestamps on status transitions are taken
// from now, never from the update itself. The function is deterministic:
// equal inputs produce equal outputs.
func ApplyUpdate(snapshot *TaskAndHistory, update Update, now time.Time) *TaskAndHistory {
	next := snapshot.Clone()

	switch update.Kind() {
	case UpdateKindStatus:
		applyStatusUpdate(next, update.Status, now)
	case UpdateKindArtifact:
		applyArtifactUpdate(next, update.Artifact)
	}

	return next
}

// applyStatusUpdate merges the update's fields onto the current status,
// update fields winning, and stamps the transition time.
func applyStatusUpdate(snapshot *TaskAndHistory, status *TaskStatus, now time.Time) {
	snapshot.Task.Status.State = status.State
	if status.Message != nil {
		msg := status.Message.Clone()
		snapshot.Task.Status.Message = msg
		// An agent-authored status message is part of the conversation
		// record, so it lands in history together with the status change.
		if msg.Role == RoleAgent {
			snapshot.History = append(snapshot.History, msg)
		}
	}
	snapshot.Task.Status.Timestamp = now.UTC().Format(time.RFC3339)
}

// applyArtifactUpdate resolves the update against the current artifact list
// by index first, then by name, and merges or replaces accordingly.
func applyArtifactUpdate(snapshot *TaskAndHistory, artifact *Artifact) {
	task := snapshot.Task

	targetIndex := -1
	switch {
	case artifact.Index != nil && *artifact.Index >= 0 && *artifact.Index < len(task.Artifacts):
		targetIndex = *artifact.Index
	case artifact.Name != "":
		for i, existing := range task.Artifacts {
			if existing.Name == artifact.Name {
				targetIndex = i
				break
			}
		}
	}

	switch {
	case targetIndex >= 0 && artifact.Append:
		merged := task.Artifacts[targetIndex].Clone()
		merged.Parts = append(merged.Parts, clonePartWrappers(artifact.Parts)...)
		if artifact.Metadata != nil {
			if merged.Metadata == nil {
				merged.Metadata = make(map[string]any, len(artifact.Metadata))
			}
			maps.Copy(merged.Metadata, artifact.Metadata)
		}
		if artifact.LastChunk != nil {
			lastChunk := *artifact.LastChunk
			merged.LastChunk = &lastChunk
		}
		if artifact.Description != "" {
			merged.Description = artifact.Description
		}
		task.Artifacts[targetIndex] = merged
	case targetIndex >= 0:
		task.Artifacts[targetIndex] = storedArtifact(artifact)
	default:
		task.Artifacts = append(task.Artifacts, storedArtifact(artifact))
	}

	sortArtifactsByIndex(task.Artifacts)
}

// storedArtifact returns a copy of artifact suitable for persisting. The
// append flag is merge instruction, not artifact state, so it is dropped.
func storedArtifact(artifact *Artifact) *Artifact {
	cp := artifact.Clone()
	cp.Append = false
	return cp
}
