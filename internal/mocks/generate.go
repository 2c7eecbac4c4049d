// Package mocks provides mock implementations for testing the conveyor
// orchestration engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core ports. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockGroupRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), "g1").Return(group, nil)
package mocks

// Generate mock for ExecutionSink interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=execution_sink_mock.go github.com/conveyorhq/conveyor/internal/core ExecutionSink

// Generate mock for ExecutionRepository interface from internal/core package.
// This creates MockExecutionRepository with methods for all ExecutionRepository interface methods:
// Save, GetByID, List, MarkStaleRunning
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=execution_repository_mock.go github.com/conveyorhq/conveyor/internal/core ExecutionRepository

// Generate mock for GroupRepository interface from internal/core package.
// This creates MockGroupRepository with methods for all GroupRepository interface methods:
// Create, GetByID, GetJob, List, Update, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=group_repository_mock.go github.com/conveyorhq/conveyor/internal/core GroupRepository

// Generate mock for SnapshotCache interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=snapshot_cache_mock.go github.com/conveyorhq/conveyor/internal/core SnapshotCache

// Generate mock for Connector interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=connector_mock.go github.com/conveyorhq/conveyor/internal/core Connector
