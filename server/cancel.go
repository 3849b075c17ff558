// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/taskflow"
	"github.com/go-a2a/taskflow/task"
)

// cancellationText is the fixed agent message recorded on a canceled task.
const cancellationText = "Task canceled by request."

// onCancelTask handles tasks/cancel. Canceling a task that already finished
// is a successful no-op; otherwise the task id is flagged for the running
// handler to observe, the canceled state is written, and the flag is cleared.
func (s *Server) onCancelTask(ctx context.Context, params *taskflow.TaskIDParams) (*taskflow.TaskAndHistory, error) {
	ctx, span := s.tracer.Start(ctx, "taskflow.server.onCancelTask",
		trace.WithAttributes(attribute.String("taskflow.task_id", params.ID)))
	defer span.End()

	snapshot, err := s.store.Load(ctx, params.ID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return nil, taskflow.NewTaskNotFoundError(params.ID)
		}
		return nil, err
	}

	if taskflow.IsTerminalTaskState(snapshot.Task.Status.State) {
		s.logger.InfoContext(ctx, "cancel of finished task is a no-op",
			slog.String("task_id", snapshot.Task.ID),
			slog.String("state", string(snapshot.Task.Status.State)))
		return snapshot, nil
	}

	if err := s.cancels.Add(ctx, params.ID); err != nil {
		return nil, err
	}

	update := taskflow.NewStatusUpdate(taskflow.TaskStateCanceled,
		taskflow.NewAgentTextMessage(cancellationText))
	canceled := taskflow.ApplyUpdate(snapshot, update, s.now())

	saveErr := s.store.Save(ctx, canceled)

	// The flag has served its purpose once the terminal write has been
	// attempted; clear it even when that write failed.
	if err := s.cancels.Delete(ctx, params.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear cancellation flag",
			slog.String("task_id", params.ID),
			slog.String("error", err.Error()))
	}

	if saveErr != nil {
		return nil, saveErr
	}

	s.logger.InfoContext(ctx, "task canceled",
		slog.String("task_id", canceled.Task.ID))

	return canceled, nil
}
