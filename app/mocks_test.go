package app

import (
	"context"
	"time"

	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/models"
	"github.com/MAKRANE-cpu/monographie/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock implementations for testing
type MockSheetSource struct {
	mock.Mock
}

func (m *MockSheetSource) Worksheets(ctx context.Context, spreadsheetID string) ([]sheet.Worksheet, error) {
	args := m.Called(ctx, spreadsheetID)
	ws, _ := args.Get(0).([]sheet.Worksheet)
	return ws, args.Error(1)
}

type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) ChatCompletion(ctx context.Context, req ports.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func timeFixture() time.Time {
	return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
}
