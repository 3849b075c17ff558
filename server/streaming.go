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

// EventSink is the outbound event stream a streaming transport hands to
// [Server.DispatchStream]. Send delivers one event to the subscriber; Close
// tears the stream down and must be idempotent.
type EventSink interface {
	Send(event taskflow.TaskEvent) error
	Close() error
}

// onSendTaskSubscribe handles tasks/sendSubscribe: same setup as tasks/send,
// but every applied update is pushed to sink as it happens. The stream ends
// with exactly one final event on every path, and sink is closed exactly
// once on every path.
func (s *Server) onSendTaskSubscribe(ctx context.Context, params *taskflow.TaskSendParams, sink EventSink) error {
	ctx, span := s.tracer.Start(ctx, "taskflow.server.onSendTaskSubscribe",
		trace.WithAttributes(attribute.String("taskflow.task_id", params.ID)))
	defer span.End()

	snapshot, err := s.loadOrCreate(ctx, params)
	if err != nil {
		return err
	}

	defer func() {
		if err := sink.Close(); err != nil {
			s.logger.WarnContext(ctx, "failed to close event stream",
				slog.String("task_id", snapshot.Task.ID),
				slog.String("error", err.Error()))
		}
	}()

	tc := s.newTaskContext(ctx, snapshot, params.Message)
	finalSent := false

	for update, err := range s.handler(ctx, tc) {
		if err != nil {
			snapshot = s.applyFailure(ctx, snapshot, err)
			s.sendStatusEvent(ctx, sink, snapshot, true)
			finalSent = true
			break
		}

		switch update.Kind() {
		case taskflow.UpdateKindStatus:
			next := taskflow.ApplyUpdate(snapshot, update, s.now())
			if err := s.store.Save(ctx, next); err != nil {
				snapshot = s.applyFailure(ctx, snapshot, err)
				s.sendStatusEvent(ctx, sink, snapshot, true)
				finalSent = true
			} else {
				snapshot = next
				tc.advance(snapshot)
				final := taskflow.IsFinalStreamState(snapshot.Task.Status.State)
				s.sendStatusEvent(ctx, sink, snapshot, final)
				finalSent = final
			}

		case taskflow.UpdateKindArtifact:
			next := taskflow.ApplyUpdate(snapshot, update, s.now())
			if err := s.store.Save(ctx, next); err != nil {
				snapshot = s.applyFailure(ctx, snapshot, err)
				s.sendStatusEvent(ctx, sink, snapshot, true)
				finalSent = true
			} else {
				snapshot = next
				tc.advance(snapshot)
				s.sendArtifactEvent(ctx, sink, snapshot, update.Artifact)
			}

		default:
			s.logger.WarnContext(ctx, "skipping unrecognized update",
				slog.String("task_id", snapshot.Task.ID))
		}

		if finalSent {
			break
		}
	}

	if !finalSent {
		// Handler ran dry without ever finalizing; close the round out
		// rather than leaving the subscriber hanging.
		if !taskflow.IsTerminalTaskState(snapshot.Task.Status.State) {
			completed := taskflow.ApplyUpdate(snapshot,
				taskflow.NewStatusUpdate(taskflow.TaskStateCompleted, nil), s.now())
			if err := s.store.Save(ctx, completed); err != nil {
				snapshot = s.applyFailure(ctx, snapshot, err)
			} else {
				snapshot = completed
			}
		}
		s.sendStatusEvent(ctx, sink, snapshot, true)
	}

	s.logger.InfoContext(ctx, "task stream finished",
		slog.String("task_id", snapshot.Task.ID),
		slog.String("state", string(snapshot.Task.Status.State)))

	return nil
}

// sendStatusEvent pushes the snapshot's current status to the subscriber.
func (s *Server) sendStatusEvent(ctx context.Context, sink EventSink, snapshot *taskflow.TaskAndHistory, final bool) {
	event := &taskflow.TaskStatusUpdateEvent{
		ID:     snapshot.Task.ID,
		Status: snapshot.Task.Status,
		Final:  final,
	}
	if err := sink.Send(event); err != nil {
		s.logger.WarnContext(ctx, "failed to send status event",
			slog.String("task_id", snapshot.Task.ID),
			slog.String("error", err.Error()))
	}
}

// sendArtifactEvent pushes one artifact update to the subscriber. Artifact
// events never finalize the stream.
func (s *Server) sendArtifactEvent(ctx context.Context, sink EventSink, snapshot *taskflow.TaskAndHistory, artifact *taskflow.Artifact) {
	event := &taskflow.TaskArtifactUpdateEvent{
		ID:       snapshot.Task.ID,
		Artifact: artifact,
		Final:    false,
	}
	if err := sink.Send(event); err != nil {
		s.logger.WarnContext(ctx, "failed to send artifact event",
			slog.String("task_id", snapshot.Task.ID),
			slog.String("error", err.Error()))
	}
}
