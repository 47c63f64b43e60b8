package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"registrum/internal/auditexport"
	"registrum/internal/domain"
	"registrum/internal/service"
)

// MockQualificationService is a mock implementation of service.QualificationService.
type MockQualificationService struct {
	mock.Mock
}

func (m *MockQualificationService) Qualify(ctx context.Context, input service.QualifyInput) (*domain.QualificationResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QualificationResult), args.Error(1)
}

func (m *MockQualificationService) Export(ctx context.Context, input service.QualifyInput, format auditexport.Format) (*service.ExportOutput, error) {
	args := m.Called(ctx, input, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportOutput), args.Error(1)
}

func (m *MockQualificationService) Checklist() *service.ChecklistView {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.ChecklistView)
}
