// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"gorm.io/gorm"

	"github.com/go-a2a/taskflow"
)

// TaskRecord is the GORM model for a persisted task snapshot. The full
// snapshot is stored as a JSON blob; id, session and state are duplicated
// into columns so they stay queryable.
type TaskRecord struct {
	ID        string    `gorm:"primaryKey;size:255"`
	SessionID string    `gorm:"index;size:255"`
	State     string    `gorm:"index;size:32"`
	Snapshot  []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName implements the GORM table name convention.
func (TaskRecord) TableName() string { return "tasks" }

// newTaskRecord converts a snapshot to its database model.
func newTaskRecord(snapshot *taskflow.TaskAndHistory) (*TaskRecord, error) {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return &TaskRecord{
		ID:        snapshot.Task.ID,
		SessionID: snapshot.Task.SessionID,
		State:     string(snapshot.Task.Status.State),
		Snapshot:  blob,
	}, nil
}

// toSnapshot converts the database model back to a snapshot.
func (r *TaskRecord) toSnapshot() (*taskflow.TaskAndHistory, error) {
	var snapshot taskflow.TaskAndHistory
	if err := json.Unmarshal(r.Snapshot, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

// DatabaseStore is a database implementation of [Store] using GORM.
type DatabaseStore struct {
	db *gorm.DB
}

var _ Store = (*DatabaseStore)(nil)

// DatabaseStoreConfig holds configuration for DatabaseStore.
type DatabaseStoreConfig struct {
	DB *gorm.DB

	// Migrate creates or updates the backing tables on construction.
	Migrate bool
}

// NewDatabaseStore creates a new DatabaseStore.
func NewDatabaseStore(config DatabaseStoreConfig) (*DatabaseStore, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if config.Migrate {
		if err := config.DB.AutoMigrate(&TaskRecord{}); err != nil {
			return nil, NewStoreError("migrate", "", err)
		}
	}
	return &DatabaseStore{db: config.DB}, nil
}

// Save implements [Store].
func (s *DatabaseStore) Save(ctx context.Context, snapshot *taskflow.TaskAndHistory) error {
	if snapshot == nil || snapshot.Task == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}
	if err := snapshot.Task.Validate(); err != nil {
		return NewStoreError("save", snapshot.Task.ID, err)
	}

	record, err := newTaskRecord(snapshot)
	if err != nil {
		return NewStoreError("save", snapshot.Task.ID, err)
	}

	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return NewStoreError("save", snapshot.Task.ID, err)
	}

	return nil
}

// Load implements [Store].
func (s *DatabaseStore) Load(ctx context.Context, taskID string) (*taskflow.TaskAndHistory, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	var record TaskRecord
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load task %s: %w", taskID, ErrTaskNotFound)
		}
		return nil, NewStoreError("load", taskID, err)
	}

	snapshot, err := record.toSnapshot()
	if err != nil {
		return nil, NewStoreError("load", taskID, err)
	}

	return snapshot, nil
}

// CancelRecord is the GORM model for a pending cancellation flag.
type CancelRecord struct {
	TaskID    string    `gorm:"primaryKey;size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName implements the GORM table name convention.
func (CancelRecord) TableName() string { return "task_cancellations" }

// DatabaseCancelStore is a database implementation of [CancelStore] using
// GORM, so cancellation requests survive process restarts and are visible
// across replicas sharing the database.
type DatabaseCancelStore struct {
	db *gorm.DB
}

var _ CancelStore = (*DatabaseCancelStore)(nil)

// NewDatabaseCancelStore creates a new DatabaseCancelStore.
func NewDatabaseCancelStore(config DatabaseStoreConfig) (*DatabaseCancelStore, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if config.Migrate {
		if err := config.DB.AutoMigrate(&CancelRecord{}); err != nil {
			return nil, NewStoreError("migrate", "", err)
		}
	}
	return &DatabaseCancelStore{db: config.DB}, nil
}

// Add implements [CancelStore].
func (s *DatabaseCancelStore) Add(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	record := CancelRecord{TaskID: taskID}
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return NewStoreError("add", taskID, err)
	}

	return nil
}

// Delete implements [CancelStore].
func (s *DatabaseCancelStore) Delete(ctx context.Context, taskID string) error {
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&CancelRecord{}).Error; err != nil {
		return NewStoreError("delete", taskID, err)
	}

	return nil
}

// Has implements [CancelStore].
func (s *DatabaseCancelStore) Has(ctx context.Context, taskID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&CancelRecord{}).Where("task_id = ?", taskID).Count(&count).Error; err != nil {
		return false, NewStoreError("has", taskID, err)
	}

	return count > 0, nil
}
