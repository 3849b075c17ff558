// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"testing"

	"github.com/go-a2a/taskflow"
)

func snapshot(taskID string, state taskflow.TaskState) *taskflow.TaskAndHistory {
	return &taskflow.TaskAndHistory{
		Task: &taskflow.Task{
			ID:     taskID,
			Status: taskflow.TaskStatus{State: state},
		},
		History: []*taskflow.Message{taskflow.NewUserTextMessage("hello")},
	}
}

func TestInMemoryStoreSaveLoad(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, snapshot("task-1", taskflow.TaskStateSubmitted)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Task.ID != "task-1" {
		t.Errorf("task id = %q, want %q", got.Task.ID, "task-1")
	}
	if got.Task.Status.State != taskflow.TaskStateSubmitted {
		t.Errorf("state = %v, want submitted", got.Task.Status.State)
	}
}

func TestInMemoryStoreLoadNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Load(context.Background(), "missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Load() error = %v, want ErrTaskNotFound", err)
	}
}

func TestInMemoryStoreSaveReplaces(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, snapshot("task-1", taskflow.TaskStateSubmitted)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, snapshot("task-1", taskflow.TaskStateWorking)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Task.Status.State != taskflow.TaskStateWorking {
		t.Errorf("state = %v, want working", got.Task.Status.State)
	}
}

func TestInMemoryStoreIsolation(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	original := snapshot("task-1", taskflow.TaskStateSubmitted)
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Mutating the saved snapshot must not reach the store.
	original.Task.Status.State = taskflow.TaskStateFailed

	first, err := store.Load(ctx, "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first.Task.Status.State != taskflow.TaskStateSubmitted {
		t.Error("store aliases the snapshot passed to Save")
	}

	// Mutating a loaded snapshot must not reach the store either.
	first.History = append(first.History, taskflow.NewUserTextMessage("more"))
	first.Task.Status.State = taskflow.TaskStateCanceled

	second, err := store.Load(ctx, "task-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if second.Task.Status.State != taskflow.TaskStateSubmitted || len(second.History) != 1 {
		t.Error("store aliases snapshots returned from Load")
	}
}

func TestInMemoryStoreRejectsInvalid(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	if err := store.Save(ctx, nil); err == nil {
		t.Error("Save(nil) error = nil, want error")
	}
	if err := store.Save(ctx, snapshot("", taskflow.TaskStateSubmitted)); err == nil {
		t.Error("Save() with empty task id error = nil, want error")
	}
}

func TestInMemoryCancelStore(t *testing.T) {
	store := NewInMemoryCancelStore()
	ctx := context.Background()

	flagged, err := store.Has(ctx, "task-1")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if flagged {
		t.Error("Has() = true before Add")
	}

	if err := store.Add(ctx, "task-1"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	flagged, err = store.Has(ctx, "task-1")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if !flagged {
		t.Error("Has() = false after Add")
	}

	if err := store.Delete(ctx, "task-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	flagged, err = store.Has(ctx, "task-1")
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if flagged {
		t.Error("Has() = true after Delete")
	}

	// Deleting an absent flag is a no-op.
	if err := store.Delete(ctx, "task-1"); err != nil {
		t.Errorf("Delete() of absent flag error = %v", err)
	}
}
