// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-a2a/taskflow"
)

// InMemoryStore is a memory-backed [Store] implementation, suitable for
// tests and single-process deployments. Snapshots are deep-copied on both
// Save and Load so callers can never alias stored state.
type InMemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]*taskflow.TaskAndHistory
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		snapshots: make(map[string]*taskflow.TaskAndHistory),
	}
}

// Save implements [Store].
func (s *InMemoryStore) Save(_ context.Context, snapshot *taskflow.TaskAndHistory) error {
	if snapshot == nil || snapshot.Task == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if err := snapshot.Task.Validate(); err != nil {
		return NewStoreError("save", snapshot.Task.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.Task.ID] = snapshot.Clone()

	return nil
}

// Load implements [Store].
func (s *InMemoryStore) Load(_ context.Context, taskID string) (*taskflow.TaskAndHistory, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[taskID]
	if !ok {
		return nil, fmt.Errorf("load task %s: %w", taskID, ErrTaskNotFound)
	}
	return snapshot.Clone(), nil
}

// InMemoryCancelStore is a memory-backed [CancelStore] implementation.
type InMemoryCancelStore struct {
	mu    sync.RWMutex
	flags map[string]struct{}
}

var _ CancelStore = (*InMemoryCancelStore)(nil)

// NewInMemoryCancelStore creates a new InMemoryCancelStore.
func NewInMemoryCancelStore() *InMemoryCancelStore {
	return &InMemoryCancelStore{
		flags: make(map[string]struct{}),
	}
}

// Add implements [CancelStore].
func (s *InMemoryCancelStore) Add(_ context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[taskID] = struct{}{}

	return nil
}

// Delete implements [CancelStore].
func (s *InMemoryCancelStore) Delete(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, taskID)

	return nil
}

// Has implements [CancelStore].
func (s *InMemoryCancelStore) Has(_ context.Context, taskID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.flags[taskID]
	return ok, nil
}
