// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"testing"

	"github.com/go-a2a/taskflow"
)

// captureSink records every event and counts Close calls.
type captureSink struct {
	events []taskflow.TaskEvent
	closes int
}

var _ EventSink = (*captureSink)(nil)

func (c *captureSink) Send(event taskflow.TaskEvent) error {
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() error {
	c.closes++
	return nil
}

func (c *captureSink) lastEvent(t *testing.T) taskflow.TaskEvent {
	t.Helper()
	if len(c.events) == 0 {
		t.Fatal("no events were sent")
	}
	return c.events[len(c.events)-1]
}

func TestSendSubscribeStreamsUpdates(t *testing.T) {
	srv, _ := newTestServer(t, scriptHandler(
		taskflow.NewStatusUpdate(taskflow.TaskStateWorking, nil),
		taskflow.NewArtifactUpdate(taskflow.NewTextArtifact("out", "chunk", "")),
		taskflow.NewStatusUpdate(taskflow.TaskStateCompleted, taskflow.NewAgentTextMessage("done")),
	))

	sink := &captureSink{}
	if err := srv.onSendTaskSubscribe(context.Background(), sendParams("task-1", "hello"), sink); err != nil {
		t.Fatalf("onSendTaskSubscribe() error = %v", err)
	}

	if len(sink.events) != 3 {
		t.Fatalf("event count = %d, want 3", len(sink.events))
	}
	if sink.closes != 1 {
		t.Errorf("close count = %d, want 1", sink.closes)
	}

	status, ok := sink.events[0].(*taskflow.TaskStatusUpdateEvent)
	if !ok || status.Status.State != taskflow.TaskStateWorking || status.Final {
		t.Errorf("event 0 = %+v, want non-final working status", sink.events[0])
	}
	artifact, ok := sink.events[1].(*taskflow.TaskArtifactUpdateEvent)
	if !ok || artifact.Final {
		t.Errorf("event 1 = %+v, want non-final artifact event", sink.events[1])
	}
	final, ok := sink.events[2].(*taskflow.TaskStatusUpdateEvent)
	if !ok || final.Status.State != taskflow.TaskStateCompleted || !final.Final {
		t.Errorf("event 2 = %+v, want final completed status", sink.events[2])
	}
}

func TestSendSubscribeStopsAtFinalEvent(t *testing.T) {
	srv, _ := newTestServer(t, scriptHandler(
		taskflow.NewStatusUpdate(taskflow.TaskStateCompleted, nil),
		// Everything after the final event must never reach the subscriber.
		taskflow.NewArtifactUpdate(taskflow.NewTextArtifact("late", "ignored", "")),
		taskflow.NewStatusUpdate(taskflow.TaskStateWorking, nil),
	))

	sink := &captureSink{}
	if err := srv.onSendTaskSubscribe(context.Background(), sendParams("task-1", "hello"), sink); err != nil {
		t.Fatalf("onSendTaskSubscribe() error = %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("event count = %d, want 1", len(sink.events))
	}
	if !sink.events[0].EventFinal() {
		t.Error("only event is not final")
	}
}

func TestSendSubscribeInputRequiredEndsStream(t *testing.T) {
	srv, store := newTestServer(t, scriptHandler(
		taskflow.NewStatusUpdate(taskflow.TaskStateInputRequired, taskflow.NewAgentTextMessage("need more")),
	))

	sink := &captureSink{}
	if err := srv.onSendTaskSubscribe(context.Background(), sendParams("task-1", "hello"), sink); err != nil {
		t.Fatalf("onSendTaskSubscribe() error = %v", err)
	}

	final := sink.lastEvent(t)
	if !final.EventFinal() {
		t.Error("input-required event is not final")
	}

	// The task itself stays open for the next message.
	stored, err := store.Load(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stored.Task.Status.State != taskflow.TaskStateInputRequired {
		t.Errorf("stored state = %v, want input-required", stored.Task.Status.State)
	}
}

func TestSendSubscribeForcedFinalization(t *testing.T) {
	srv, store := newTestServer(t, scriptHandler(
		taskflow.NewStatusUpdate(taskflow.TaskStateWorking, nil),
		taskflow.NewArtifactUpdate(taskflow.NewTextArtifact("out", "chunk", "")),
	))

	sink := &captureSink{}
	if err := srv.onSendTaskSubscribe(context.Background(), sendParams("task-1", "hello"), sink); err != nil {
		t.Fatalf("onSendTaskSubscribe() error = %v", err)
	}

	final, ok := sink.lastEvent(t).(*taskflow.TaskStatusUpdateEvent)
	if !ok {
		t.Fatalf("last event type = %T, want status event", sink.lastEvent(t))
	}
	if !final.Final {
		t.Error("forced finalization event is not final")
	}
	if final.Status.State != taskflow.TaskStateCompleted {
		t.Errorf("final state = %v, want completed", final.Status.State)
	}

	stored, err := store.Load(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stored.Task.Status.State != taskflow.TaskStateCompleted {
		t.Errorf("stored state = %v, want completed", stored.Task.Status.State)
	}
	if sink.closes != 1 {
		t.Errorf("close count = %d, want 1", sink.closes)
	}
}

func TestSendSubscribeHandlerFailure(t *testing.T) {
	srv, store := newTestServer(t, failingHandler(errors.New("model exploded"),
		taskflow.NewStatusUpdate(taskflow.TaskStateWorking, nil),
	))

	sink := &captureSink{}
	// The failure reaches the subscriber as an event; the call itself
	// succeeds because the stream was already delivering.
	if err := srv.onSendTaskSubscribe(context.Background(), sendParams("task-1", "hello"), sink); err != nil {
		t.Fatalf("onSendTaskSubscribe() error = %v", err)
	}

	final, ok := sink.lastEvent(t).(*taskflow.TaskStatusUpdateEvent)
	if !ok || !final.Final {
		t.Fatalf("last event = %+v, want final status event", sink.lastEvent(t))
	}
	if final.Status.State != taskflow.TaskStateFailed {
		t.Errorf("final state = %v, want failed", final.Status.State)
	}
	if sink.closes != 1 {
		t.Errorf("close count = %d, want 1", sink.closes)
	}

	stored, err := store.Load(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if stored.Task.Status.State != taskflow.TaskStateFailed {
		t.Errorf("stored state = %v, want failed", stored.Task.Status.State)
	}
}

func TestSendSubscribeSkipsUnrecognizedUpdates(t *testing.T) {
	srv, _ := newTestServer(t, scriptHandler(
		taskflow.Update{}, // neither status nor artifact
		taskflow.NewStatusUpdate(taskflow.TaskStateCompleted, nil),
	))

	sink := &captureSink{}
	if err := srv.onSendTaskSubscribe(context.Background(), sendParams("task-1", "hello"), sink); err != nil {
		t.Fatalf("onSendTaskSubscribe() error = %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("event count = %d, want 1 (unrecognized update skipped)", len(sink.events))
	}
}

func TestDispatchStream(t *testing.T) {
	srv, _ := newTestServer(t, scriptHandler(
		taskflow.NewStatusUpdate(taskflow.TaskStateCompleted, nil),
	))

	sink := &captureSink{}
	req := newRequest(t, `"req-1"`, taskflow.MethodTasksSendSubscribe, sendParams("task-1", "hello"))
	if err := srv.DispatchStream(context.Background(), req, sink); err != nil {
		t.Fatalf("DispatchStream() error = %v", err)
	}
	if len(sink.events) != 1 {
		t.Errorf("event count = %d, want 1", len(sink.events))
	}
}

func TestDispatchStreamRejectsOtherMethods(t *testing.T) {
	srv, _ := newTestServer(t, scriptHandler())

	sink := &captureSink{}
	req := newRequest(t, `"req-1"`, taskflow.MethodTasksGet, &taskflow.TaskQueryParams{ID: "task-1"})
	err := srv.DispatchStream(context.Background(), req, sink)

	var protoErr *taskflow.Error
	if !errors.As(err, &protoErr) {
		t.Fatalf("error type = %T, want *taskflow.Error", err)
	}
	if protoErr.Code != taskflow.MethodNotFoundErrorCode {
		t.Errorf("code = %d, want %d", protoErr.Code, taskflow.MethodNotFoundErrorCode)
	}
}

func TestDispatchStreamInvalidParams(t *testing.T) {
	srv, _ := newTestServer(t, scriptHandler())

	sink := &captureSink{}
	req := newRequest(t, `"req-1"`, taskflow.MethodTasksSendSubscribe, &taskflow.TaskSendParams{ID: "task-1"})
	err := srv.DispatchStream(context.Background(), req, sink)

	var protoErr *taskflow.Error
	if !errors.As(err, &protoErr) {
		t.Fatalf("error type = %T, want *taskflow.Error", err)
	}
	if protoErr.Code != taskflow.InvalidParamsErrorCode {
		t.Errorf("code = %d, want %d", protoErr.Code, taskflow.InvalidParamsErrorCode)
	}
	if len(sink.events) != 0 {
		t.Errorf("event count = %d, want 0", len(sink.events))
	}
}
