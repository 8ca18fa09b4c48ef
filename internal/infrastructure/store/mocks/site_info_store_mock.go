package mocks

import (
	"context"
	"sync"

	"github.com/example/apparel-storefront/internal/infrastructure/store"
)

// MockSiteInfoStore is a mock implementation of store.SiteInfoStore for testing
type MockSiteInfoStore struct {
	mu   sync.Mutex
	rows *store.Memory

	LatestErr error
	InsertErr error
	UpdateErr error

	LatestCalls int
	InsertCalls []store.SiteInfoRow
	UpdateCalls []UpdateCall
}

// NewMockSiteInfoStore creates a new MockSiteInfoStore
func NewMockSiteInfoStore() *MockSiteInfoStore {
	return &MockSiteInfoStore{rows: store.NewMemory()}
}

// Seed stores a row without recording the call and returns the stored copy
func (m *MockSiteInfoStore) Seed(row store.SiteInfoRow) *store.SiteInfoRow {
	created, _ := m.rows.InsertSiteInfo(context.Background(), row)
	return created
}

func (m *MockSiteInfoStore) LatestSiteInfo(ctx context.Context) (*store.SiteInfoRow, error) {
	m.mu.Lock()
	m.LatestCalls++
	err := m.LatestErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.rows.LatestSiteInfo(ctx)
}

func (m *MockSiteInfoStore) InsertSiteInfo(ctx context.Context, row store.SiteInfoRow) (*store.SiteInfoRow, error) {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, row)
	err := m.InsertErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.rows.InsertSiteInfo(ctx, row)
}

func (m *MockSiteInfoStore) UpdateSiteInfo(ctx context.Context, id string, fields store.Fields) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{ID: id, Fields: fields})
	err := m.UpdateErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.rows.UpdateSiteInfo(ctx, id, fields)
}
