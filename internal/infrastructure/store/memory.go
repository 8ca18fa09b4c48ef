package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process implementation of every store interface. It backs
// local development when no DATABASE_URL is configured.
type Memory struct {
	mu        sync.RWMutex
	products  map[string]ProductRow
	siteInfo  []SiteInfoRow
	userCarts map[string]UserCartRow
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		products:  make(map[string]ProductRow),
		userCarts: make(map[string]UserCartRow),
		now:       time.Now,
	}
}

var (
	_ ProductStore  = (*Memory)(nil)
	_ SiteInfoStore = (*Memory)(nil)
	_ UserCartStore = (*Memory)(nil)
)

// ListProducts returns rows oldest first, matching the Postgres ordering.
func (m *Memory) ListProducts(ctx context.Context) ([]ProductRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]ProductRow, 0, len(m.products))
	for _, row := range m.products {
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows, nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (*ProductRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (m *Memory) InsertProduct(ctx context.Context, row ProductRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	now := m.now()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	m.products[row.ID] = row
	return nil
}

func (m *Memory) UpdateProduct(ctx context.Context, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if err := ApplyProductFields(&row, fields); err != nil {
		return err
	}
	row.UpdatedAt = m.now()
	m.products[id] = row
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// LatestSiteInfo returns the most recently created row.
func (m *Memory) LatestSiteInfo(ctx context.Context) (*SiteInfoRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.siteInfo) == 0 {
		return nil, ErrNotFound
	}
	latest := m.siteInfo[0]
	for _, row := range m.siteInfo[1:] {
		if !row.CreatedAt.Before(latest.CreatedAt) {
			latest = row
		}
	}
	return &latest, nil
}

func (m *Memory) InsertSiteInfo(ctx context.Context, row SiteInfoRow) (*SiteInfoRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	now := m.now()
	row.CreatedAt = now
	row.UpdatedAt = now
	m.siteInfo = append(m.siteInfo, row)
	return &row, nil
}

func (m *Memory) UpdateSiteInfo(ctx context.Context, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.siteInfo {
		if m.siteInfo[i].ID != id {
			continue
		}
		row := m.siteInfo[i]
		if err := ApplySiteInfoFields(&row, fields); err != nil {
			return err
		}
		row.UpdatedAt = m.now()
		m.siteInfo[i] = row
		return nil
	}
	return ErrNotFound
}

func (m *Memory) GetUserCart(ctx context.Context, email string) (*UserCartRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.userCarts[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (m *Memory) UpsertUserCart(ctx context.Context, email string, data json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	row, ok := m.userCarts[email]
	if !ok {
		row = UserCartRow{UserEmail: email, CreatedAt: now}
	}
	row.CartData = append(json.RawMessage(nil), data...)
	row.UpdatedAt = now
	m.userCarts[email] = row
	return nil
}
