package mocks

import (
	"context"

	"acsgateway/internal/model"
	"acsgateway/internal/ratelimit"
	"acsgateway/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockExtractorService struct {
	mock.Mock
}

func (m *MockExtractorService) Extract(ctx context.Context, req service.ExtractRequest) (*model.ExtractResponse, ratelimit.Decision, error) {
	args := m.Called(ctx, req)
	dec := args.Get(1).(ratelimit.Decision)
	if args.Get(0) == nil {
		return nil, dec, args.Error(2)
	}
	return args.Get(0).(*model.ExtractResponse), dec, args.Error(2)
}

func (m *MockExtractorService) GetReport(ctx context.Context, id string) (*model.PublicReportResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PublicReportResponse), args.Error(1)
}
