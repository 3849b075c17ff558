// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/taskflow"
)

// onSendTask handles tasks/send: it materializes the snapshot, drives the
// handler's update sequence to completion and returns the final snapshot.
func (s *Server) onSendTask(ctx context.Context, params *taskflow.TaskSendParams) (*taskflow.TaskAndHistory, error) {
	ctx, span := s.tracer.Start(ctx, "taskflow.server.onSendTask",
		trace.WithAttributes(attribute.String("taskflow.task_id", params.ID)))
	defer span.End()

	snapshot, err := s.loadOrCreate(ctx, params)
	if err != nil {
		return nil, err
	}

	tc := s.newTaskContext(ctx, snapshot, params.Message)

	for update, err := range s.handler(ctx, tc) {
		if err != nil {
			return nil, s.failTask(ctx, snapshot, err)
		}

		next := taskflow.ApplyUpdate(snapshot, update, s.now())
		if err := s.store.Save(ctx, next); err != nil {
			return nil, s.failTask(ctx, snapshot, err)
		}
		snapshot = next
		tc.advance(snapshot)
	}

	s.logger.InfoContext(ctx, "task send completed",
		slog.String("task_id", snapshot.Task.ID),
		slog.String("state", string(snapshot.Task.Status.State)))

	return snapshot, nil
}

// failTask records a handler failure on the task: it applies a failed status
// carrying the failure text as an agent message and persists it best effort.
// A persistence failure here is logged, never raised, so it cannot mask the
// original failure. The returned error is the normalized original, with the
// task id attached.
func (s *Server) failTask(ctx context.Context, snapshot *taskflow.TaskAndHistory, cause error) *taskflow.Error {
	failed := s.applyFailure(ctx, snapshot, cause)

	protoErr := taskflow.NormalizeError(cause)
	if protoErr.TaskID == "" {
		protoErr.TaskID = failed.Task.ID
	}
	return protoErr
}

// applyFailure folds a failed status update into the snapshot and persists
// it best effort, returning the failed snapshot.
func (s *Server) applyFailure(ctx context.Context, snapshot *taskflow.TaskAndHistory, cause error) *taskflow.TaskAndHistory {
	update := taskflow.NewStatusUpdate(taskflow.TaskStateFailed,
		taskflow.NewAgentTextMessage(cause.Error()))

	failed := taskflow.ApplyUpdate(snapshot, update, s.now())
	if err := s.store.Save(ctx, failed); err != nil {
		s.logger.WarnContext(ctx, "failed to persist failure state",
			slog.String("task_id", failed.Task.ID),
			slog.String("error", err.Error()))
	}

	s.logger.WarnContext(ctx, "task failed",
		slog.String("task_id", failed.Task.ID),
		slog.String("error", cause.Error()))

	return failed
}
