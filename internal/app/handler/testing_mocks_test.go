package handler

import (
	"context"
	"sync"

	"hostcompare/internal/app/mail"
	"hostcompare/internal/app/migration"

	"github.com/stretchr/testify/mock"
)

// MockFileStore is a mock implementation of FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) UploadFile(ctx context.Context, kind string, data []byte, originalFilename string) (string, error) {
	args := m.Called(ctx, kind, data, originalFilename)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) DeleteFile(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockFileStore) FileURL(name string) string {
	args := m.Called(name)
	return args.String(0)
}

// MockMigrationService is a mock implementation of MigrationService
type MockMigrationService struct {
	mock.Mock
}

func (m *MockMigrationService) Start(ctx context.Context, opts migration.Options) (migration.Status, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(migration.Status), args.Error(1)
}

func (m *MockMigrationService) Status() (migration.Status, error) {
	args := m.Called()
	return args.Get(0).(migration.Status), args.Error(1)
}

// recordingMailer запоминает отправленные письма.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (r *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingMailer) Sent() []mail.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mail.Message(nil), r.sent...)
}
