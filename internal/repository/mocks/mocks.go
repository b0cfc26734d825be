// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/fasttrack/fasttrack/internal/repository"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock of repository.SessionRepository
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Get(ctx context.Context, sessionID string) (*repository.SessionRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SessionRecord), args.Error(1)
}

func (m *SessionRepository) List(ctx context.Context) ([]repository.SessionRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.SessionRecord), args.Error(1)
}

func (m *SessionRepository) MostRecent(ctx context.Context) (*repository.SessionRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.SessionRecord), args.Error(1)
}

// ProjectRepository is a mock of repository.ProjectRepository
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Get(ctx context.Context, projectID string) ([]byte, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// AssetRepository is a mock of repository.AssetRepository
type AssetRepository struct {
	mock.Mock
}

func (m *AssetRepository) ListBySession(ctx context.Context, sessionID string) ([]repository.AssetRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.AssetRecord), args.Error(1)
}

// SnapshotStore is a mock of repository.SnapshotStore
type SnapshotStore struct {
	mock.Mock
}

func (m *SnapshotStore) SaveSnapshot(ctx context.Context, snap *repository.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *SnapshotStore) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// FlatStore is a mock of repository.FlatStore
type FlatStore struct {
	mock.Mock
}

func (m *FlatStore) Set(key string, value []byte) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *FlatStore) Get(key string) ([]byte, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *FlatStore) Remove(key string) error {
	args := m.Called(key)
	return args.Error(0)
}
