// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"iter"

	"github.com/go-a2a/taskflow"
)

// TaskHandler is the caller-supplied agent logic. It receives a
// request-scoped [TaskContext] and yields a sequence of updates; the engine
// applies and persists each update in order before pulling the next one.
// Yielding an error aborts the sequence and fails the task.
//
// Handlers are cooperative: the engine never interrupts a running handler.
// A handler that wants to honor cancellation polls [TaskContext.IsCancelled]
// between units of work.
type TaskHandler func(ctx context.Context, tc *TaskContext) iter.Seq2[taskflow.Update, error]

// TaskContext is the request-scoped view of a task handed to a
// [TaskHandler]. Task and History are deep copies the handler may read or
// scribble on freely without affecting engine state; the engine refreshes
// them after each applied update.
type TaskContext struct {
	// Task is the current task snapshot.
	Task *taskflow.Task

	// UserMessage is the message that triggered this invocation.
	UserMessage *taskflow.Message

	// History is the message history so far, including UserMessage.
	History []*taskflow.Message

	isCancelled func() bool
}

// IsCancelled reports whether cancellation has been requested for this task.
// The check is advisory; ignoring it lets the handler run to completion.
func (tc *TaskContext) IsCancelled() bool {
	if tc.isCancelled == nil {
		return false
	}
	return tc.isCancelled()
}

// advance points the context at a fresh snapshot after an update was applied
// and persisted. The context receives its own copy; handler writes never
// reach the snapshot the engine persists.
func (tc *TaskContext) advance(snapshot *taskflow.TaskAndHistory) {
	view := snapshot.Clone()
	tc.Task = view.Task
	tc.History = view.History
}
