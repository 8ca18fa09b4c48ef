package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
)

// ErrNotFound is returned when a lookup matches no row. Reading the site_info
// singleton treats it as "create the default record", not as a failure.
var ErrNotFound = errors.New("record not found")

// Fields carries a partial update keyed by column name. Only the columns present
// are written.
type Fields map[string]any

// Columns returns the column names in a stable order.
func (f Fields) Columns() []string {
	cols := make([]string, 0, len(f))
	for c := range f {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// ProductStore is the remote products table.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]ProductRow, error)
	GetProduct(ctx context.Context, id string) (*ProductRow, error)
	InsertProduct(ctx context.Context, row ProductRow) error
	UpdateProduct(ctx context.Context, id string, fields Fields) error
	DeleteProduct(ctx context.Context, id string) error
}

// SiteInfoStore is the remote site_info table. Only the newest row is authoritative.
type SiteInfoStore interface {
	LatestSiteInfo(ctx context.Context) (*SiteInfoRow, error)
	InsertSiteInfo(ctx context.Context, row SiteInfoRow) (*SiteInfoRow, error)
	UpdateSiteInfo(ctx context.Context, id string, fields Fields) error
}

// UserCartStore is the remote user_carts table keyed by user email.
type UserCartStore interface {
	GetUserCart(ctx context.Context, email string) (*UserCartRow, error)
	UpsertUserCart(ctx context.Context, email string, data json.RawMessage) error
}
