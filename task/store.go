// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package task provides persistence backends for task snapshots and
// cancellation flags.
package task

import (
	"context"

	"github.com/go-a2a/taskflow"
)

// Store defines the interface for task snapshot persistence.
// This interface abstracts the storage mechanism to allow different
// implementations (database, in-memory, etc.) while maintaining a
// consistent API for the engine. A Store holds at most one snapshot
// per task id.
type Store interface {
	// Save persists a snapshot to the storage backend.
	// If a snapshot for the task id already exists, it is replaced.
	Save(ctx context.Context, snapshot *taskflow.TaskAndHistory) error

	// Load retrieves the snapshot for a task id.
	// Returns ErrTaskNotFound if no snapshot exists.
	Load(ctx context.Context, taskID string) (*taskflow.TaskAndHistory, error)
}

// CancelStore tracks the set of task ids with a pending cancellation
// request. A running handler observes the flag through its context's
// cancellation probe; the engine adds the flag when a cancel request is
// accepted and clears it once the terminal state has been written.
type CancelStore interface {
	// Add flags the task id as cancel-requested.
	Add(ctx context.Context, taskID string) error

	// Delete clears the flag for the task id. Clearing an absent flag
	// is a no-op.
	Delete(ctx context.Context, taskID string) error

	// Has reports whether the task id is currently flagged.
	Has(ctx context.Context, taskID string) (bool, error)
}
