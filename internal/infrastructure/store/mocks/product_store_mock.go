package mocks

import (
	"context"
	"sync"

	"github.com/example/apparel-storefront/internal/infrastructure/store"
)

// MockProductStore is a mock implementation of store.ProductStore for testing
type MockProductStore struct {
	mu   sync.Mutex
	rows *store.Memory

	// Errors returned by the next calls when set
	ListErr   error
	InsertErr error
	UpdateErr error
	DeleteErr error

	// For tracking calls in tests
	ListCalls   int
	InsertCalls []store.ProductRow
	UpdateCalls []UpdateCall
	DeleteCalls []string
}

// UpdateCall records parameters passed to an Update method
type UpdateCall struct {
	ID     string
	Fields store.Fields
}

// NewMockProductStore creates a new MockProductStore
func NewMockProductStore() *MockProductStore {
	return &MockProductStore{rows: store.NewMemory()}
}

// Seed stores rows without recording calls
func (m *MockProductStore) Seed(rows ...store.ProductRow) {
	for _, row := range rows {
		_ = m.rows.InsertProduct(context.Background(), row)
	}
}

func (m *MockProductStore) ListProducts(ctx context.Context) ([]store.ProductRow, error) {
	m.mu.Lock()
	m.ListCalls++
	err := m.ListErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.rows.ListProducts(ctx)
}

func (m *MockProductStore) GetProduct(ctx context.Context, id string) (*store.ProductRow, error) {
	return m.rows.GetProduct(ctx, id)
}

func (m *MockProductStore) InsertProduct(ctx context.Context, row store.ProductRow) error {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, row)
	err := m.InsertErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.rows.InsertProduct(ctx, row)
}

func (m *MockProductStore) UpdateProduct(ctx context.Context, id string, fields store.Fields) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{ID: id, Fields: fields})
	err := m.UpdateErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.rows.UpdateProduct(ctx, id, fields)
}

func (m *MockProductStore) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	err := m.DeleteErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.rows.DeleteProduct(ctx, id)
}

// Reset clears all recorded calls and injected errors
func (m *MockProductStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListErr, m.InsertErr, m.UpdateErr, m.DeleteErr = nil, nil, nil, nil
	m.ListCalls = 0
	m.InsertCalls = nil
	m.UpdateCalls = nil
	m.DeleteCalls = nil
}
