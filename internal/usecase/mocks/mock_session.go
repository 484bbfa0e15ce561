//	mockgen -destination=internal/usecase/mocks/mock_session.go -package=mocks github.com/iho/budgetbridge/internal/upstream Session
//

package mocks

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	domain "github.com/iho/budgetbridge/internal/domain"
	upstream "github.com/iho/budgetbridge/internal/upstream"
)

// MockSession is a mock of Session interface.
type MockSession struct {
	ctrl     *gomock.Controller
	recorder *MockSessionMockRecorder
	isgomock struct{}
}

// MockSessionMockRecorder is the mock recorder for MockSession.
type MockSessionMockRecorder struct {
	mock *MockSession
}

// NewMockSession creates a new mock instance.
func NewMockSession(ctrl *gomock.Controller) *MockSession {
	mock := &MockSession{ctrl: ctrl}
	mock.recorder = &MockSessionMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSession) EXPECT() *MockSessionMockRecorder {
	return m.recorder
}

// Accounts mocks base method.
func (m *MockSession) Accounts(ctx context.Context) ([]domain.NamedEntity, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Accounts", ctx)
	ret0, _ := ret[0].([]domain.NamedEntity)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Accounts indicates an expected call of Accounts.
func (mr *MockSessionMockRecorder) Accounts(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Accounts", reflect.TypeOf((*MockSession)(nil).Accounts), ctx)
}

// Categories mocks base method.
func (m *MockSession) Categories(ctx context.Context) ([]domain.NamedEntity, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Categories", ctx)
	ret0, _ := ret[0].([]domain.NamedEntity)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Categories indicates an expected call of Categories.
func (mr *MockSessionMockRecorder) Categories(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Categories", reflect.TypeOf((*MockSession)(nil).Categories), ctx)
}

// CreatePayee mocks base method.
func (m *MockSession) CreatePayee(ctx context.Context, name string) (domain.NamedEntity, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreatePayee", ctx, name)
	ret0, _ := ret[0].(domain.NamedEntity)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CreatePayee indicates an expected call of CreatePayee.
func (mr *MockSessionMockRecorder) CreatePayee(ctx, name any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreatePayee", reflect.TypeOf((*MockSession)(nil).CreatePayee), ctx, name)
}

// CreateTransaction mocks base method.
func (m *MockSession) CreateTransaction(ctx context.Context, fields upstream.TransactionFields) (domain.Transaction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateTransaction", ctx, fields)
	ret0, _ := ret[0].(domain.Transaction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CreateTransaction indicates an expected call of CreateTransaction.
func (mr *MockSessionMockRecorder) CreateTransaction(ctx, fields any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateTransaction", reflect.TypeOf((*MockSession)(nil).CreateTransaction), ctx, fields)
}

// Payees mocks base method.
func (m *MockSession) Payees(ctx context.Context) ([]domain.NamedEntity, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Payees", ctx)
	ret0, _ := ret[0].([]domain.NamedEntity)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Payees indicates an expected call of Payees.
func (mr *MockSessionMockRecorder) Payees(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Payees", reflect.TypeOf((*MockSession)(nil).Payees), ctx)
}

// Sync mocks base method.
func (m *MockSession) Sync(ctx context.Context) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Sync", ctx)
	ret0, _ := ret[0].(error)
	return ret0
}

// Sync indicates an expected call of Sync.
func (mr *MockSessionMockRecorder) Sync(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Sync", reflect.TypeOf((*MockSession)(nil).Sync), ctx)
}

// Transactions mocks base method.
func (m *MockSession) Transactions(ctx context.Context, accounts []domain.NamedEntity, from, to string) ([]domain.Transaction, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Transactions", ctx, accounts, from, to)
	ret0, _ := ret[0].([]domain.Transaction)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Transactions indicates an expected call of Transactions.
func (mr *MockSessionMockRecorder) Transactions(ctx, accounts, from, to any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Transactions", reflect.TypeOf((*MockSession)(nil).Transactions), ctx, accounts, from, to)
}
