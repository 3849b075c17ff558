// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/taskflow"
	"github.com/go-a2a/taskflow/task"
)

// onGetTask handles tasks/get: it returns the stored snapshot untouched,
// optionally trimming the returned history to the newest N messages.
func (s *Server) onGetTask(ctx context.Context, params *taskflow.TaskQueryParams) (*taskflow.TaskAndHistory, error) {
	ctx, span := s.tracer.Start(ctx, "taskflow.server.onGetTask",
		trace.WithAttributes(attribute.String("taskflow.task_id", params.ID)))
	defer span.End()

	snapshot, err := s.store.Load(ctx, params.ID)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return nil, taskflow.NewTaskNotFoundError(params.ID)
		}
		return nil, err
	}

	if params.HistoryLength != nil && *params.HistoryLength < len(snapshot.History) {
		snapshot.History = snapshot.History[len(snapshot.History)-*params.HistoryLength:]
	}

	return snapshot, nil
}
