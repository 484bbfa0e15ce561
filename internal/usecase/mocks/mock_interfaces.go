//	mockgen -source=internal/usecase/interfaces.go -destination=internal/usecase/mocks/mock_interfaces.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	domain "github.com/iho/budgetbridge/internal/domain"
	upstream "github.com/iho/budgetbridge/internal/upstream"
)

// MockSessionGateway is a mock of SessionGateway interface.
type MockSessionGateway struct {
	ctrl     *gomock.Controller
	recorder *MockSessionGatewayMockRecorder
	isgomock struct{}
}

// MockSessionGatewayMockRecorder is the mock recorder for MockSessionGateway.
type MockSessionGatewayMockRecorder struct {
	mock *MockSessionGateway
}

// NewMockSessionGateway creates a new mock instance.
func NewMockSessionGateway(ctrl *gomock.Controller) *MockSessionGateway {
	mock := &MockSessionGateway{ctrl: ctrl}
	mock.recorder = &MockSessionGatewayMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSessionGateway) EXPECT() *MockSessionGatewayMockRecorder {
	return m.recorder
}

// Check mocks base method.
func (m *MockSessionGateway) Check(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Check", ctx)
	ret0, _ := ret[0].(error)
	return ret0
}

// Check indicates an expected call of Check.
func (mr *MockSessionGatewayMockRecorder) Check(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Check", reflect.TypeOf((*MockSessionGateway)(nil).Check), ctx)
}

// ListBudgets mocks base method.
func (m *MockSessionGateway) ListBudgets(ctx context.Context) ([]domain.BudgetSummary, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListBudgets", ctx)
	ret0, _ := ret[0].([]domain.BudgetSummary)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListBudgets indicates an expected call of ListBudgets.
func (mr *MockSessionGatewayMockRecorder) ListBudgets(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListBudgets", reflect.TypeOf((*MockSessionGateway)(nil).ListBudgets), ctx)
}

// WithBudget mocks base method.
func (m *MockSessionGateway) WithBudget(ctx context.Context, budgetID string, fn func(context.Context, upstream.Session) error) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WithBudget", ctx, budgetID, fn)
	ret0, _ := ret[0].(error)
	return ret0
}

// WithBudget indicates an expected call of WithBudget.
func (mr *MockSessionGatewayMockRecorder) WithBudget(ctx, budgetID, fn any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WithBudget", reflect.TypeOf((*MockSessionGateway)(nil).WithBudget), ctx, budgetID, fn)
}
