// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/domain/core/valueobjects"
	"github.com/1CEs/xams-sub001/domain/events"
	"github.com/1CEs/xams-sub001/domain/hierarchy"
)

// MockBankStore is a mock of ports.BankStore
type MockBankStore struct {
	mock.Mock
}

var _ ports.BankStore = (*MockBankStore)(nil)

func (m *MockBankStore) Forest(ctx context.Context, scope ports.ForestScope) ([]hierarchy.RawBank, error) {
	args := m.Called(ctx, scope)
	raw, _ := args.Get(0).([]hierarchy.RawBank)
	return raw, args.Error(1)
}

func (m *MockBankStore) Hierarchy(ctx context.Context, id valueobjects.BankID) (hierarchy.RawBank, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(hierarchy.RawBank), args.Error(1)
}

func (m *MockBankStore) CreateTopLevel(ctx context.Context, ownerID string, bank ports.NewBank) (hierarchy.RawBank, error) {
	args := m.Called(ctx, ownerID, bank)
	return args.Get(0).(hierarchy.RawBank), args.Error(1)
}

func (m *MockBankStore) CreateChild(ctx context.Context, parentID valueobjects.BankID, bank ports.NewBank) (hierarchy.RawBank, error) {
	args := m.Called(ctx, parentID, bank)
	return args.Get(0).(hierarchy.RawBank), args.Error(1)
}

func (m *MockBankStore) CreateNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, bank ports.NewBank) (hierarchy.RawBank, error) {
	args := m.Called(ctx, rootID, path, bank)
	return args.Get(0).(hierarchy.RawBank), args.Error(1)
}

func (m *MockBankStore) RenameTopLevel(ctx context.Context, id valueobjects.BankID, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *MockBankStore) RenameChild(ctx context.Context, parentID, id valueobjects.BankID, name string) error {
	return m.Called(ctx, parentID, id, name).Error(0)
}

func (m *MockBankStore) RenameNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID, name string) error {
	return m.Called(ctx, rootID, path, id, name).Error(0)
}

func (m *MockBankStore) DeleteTopLevel(ctx context.Context, id valueobjects.BankID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBankStore) DeleteChild(ctx context.Context, parentID, id valueobjects.BankID) error {
	return m.Called(ctx, parentID, id).Error(0)
}

func (m *MockBankStore) DeleteNested(ctx context.Context, rootID valueobjects.BankID, path valueobjects.BankPath, id valueobjects.BankID) error {
	return m.Called(ctx, rootID, path, id).Error(0)
}

// MockEventPublisher is a mock of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

var _ ports.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return m.Called(ctx, batch).Error(0)
}
