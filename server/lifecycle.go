// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/go-a2a/taskflow"
	"github.com/go-a2a/taskflow/task"
)

// loadOrCreate materializes the snapshot for an inbound message: it creates
// the task on first reference to an unseen id, or folds the message into the
// existing record per the lifecycle policy. Every branch persists before
// returning, and the returned snapshot is independent of store state.
func (s *Server) loadOrCreate(ctx context.Context, params *taskflow.TaskSendParams) (*taskflow.TaskAndHistory, error) {
	snapshot, err := s.store.Load(ctx, params.ID)
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		return s.createTask(ctx, params)
	case err != nil:
		return nil, err
	}

	snapshot.History = append(snapshot.History, params.Message.Clone())

	state := snapshot.Task.Status.State
	switch {
	case taskflow.IsTerminalTaskState(state):
		// A finished task getting a new message starts a fresh round under
		// the same id; history carries over, the stale status message does
		// not.
		s.logger.InfoContext(ctx, "reopening finished task",
			slog.String("task_id", snapshot.Task.ID),
			slog.String("state", string(state)))
		snapshot.Task.Status.State = taskflow.TaskStateSubmitted
		snapshot.Task.Status.Message = nil
		snapshot.Task.Status.Timestamp = s.timestamp()

	case state == taskflow.TaskStateInputRequired:
		snapshot.Task.Status.State = taskflow.TaskStateWorking
		snapshot.Task.Status.Timestamp = s.timestamp()

	case state == taskflow.TaskStateWorking:
		// Message lands in history only; the in-flight round keeps going.
		s.logger.InfoContext(ctx, "task already working, recording message only",
			slog.String("task_id", snapshot.Task.ID))
	}

	if err := s.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// createTask persists a brand-new submitted task seeded with the incoming
// message.
func (s *Server) createTask(ctx context.Context, params *taskflow.TaskSendParams) (*taskflow.TaskAndHistory, error) {
	sessionID := params.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	snapshot := &taskflow.TaskAndHistory{
		Task: &taskflow.Task{
			ID:        params.ID,
			SessionID: sessionID,
			Status: taskflow.TaskStatus{
				State:     taskflow.TaskStateSubmitted,
				Timestamp: s.timestamp(),
			},
			Metadata: params.Metadata,
		},
		History: []*taskflow.Message{params.Message.Clone()},
	}

	if err := s.store.Save(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "task created",
		slog.String("task_id", snapshot.Task.ID),
		slog.String("session_id", sessionID))

	return snapshot, nil
}

// timestamp renders the current clock reading in the wire format used by
// task statuses.
func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// newTaskContext builds the request-scoped handler view bound to the
// snapshot, with a cancellation probe for the task id.
func (s *Server) newTaskContext(ctx context.Context, snapshot *taskflow.TaskAndHistory, message *taskflow.Message) *TaskContext {
	taskID := snapshot.Task.ID
	view := snapshot.Clone()
	return &TaskContext{
		Task:        view.Task,
		UserMessage: message,
		History:     view.History,
		isCancelled: func() bool {
			flagged, err := s.cancels.Has(ctx, taskID)
			if err != nil {
				s.logger.WarnContext(ctx, "cancellation probe failed",
					slog.String("task_id", taskID),
					slog.String("error", err.Error()))
				return false
			}
			return flagged
		},
	}
}
