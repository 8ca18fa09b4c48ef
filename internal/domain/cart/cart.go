package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/apparel-storefront/internal/domain/catalog"
)

var (
	ErrInvalidProduct  = errors.New("product id is required")
	ErrNoVariants      = errors.New("product has no sizes configured")
	ErrSizeRequired    = errors.New("size is required")
	ErrSizeUnavailable = errors.New("size is not available for this product")
	ErrColorRequired   = errors.New("color is required")
	ErrUnknownColor    = errors.New("color is not offered for this product")
	ErrItemNotFound    = errors.New("item not in cart")
)

// Key identifies a line item. Color is empty for products without colors.
type Key struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// LineItem holds a snapshot of the product taken when it was first added, so
// later catalog edits do not change the cart.
type LineItem struct {
	Product  catalog.Product `json:"product"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	Quantity int             `json:"quantity"`
}

func (li LineItem) Key() Key {
	return Key{ProductID: li.Product.ID, Size: li.Size, Color: li.Color}
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ColorName returns the display name of the selected color, or its id when
// the snapshot no longer lists it.
func (li LineItem) ColorName() string {
	if c, ok := li.Product.Variants().FindColor(li.Color); ok {
		return c.Name
	}
	return li.Color
}

// SizeName returns the display name of the selected size.
func (li LineItem) SizeName() string {
	if s, ok := li.Product.Variants().FindSize(li.Size); ok {
		return s.Name
	}
	return li.Size
}

func (li LineItem) clone() LineItem {
	li.Product = li.Product.Clone()
	return li
}

// ChangeFunc receives the full item list after every mutation.
type ChangeFunc func(ctx context.Context, items []LineItem)

// Store is one device's cart. Items keep insertion order.
type Store struct {
	mu       sync.Mutex
	items    []LineItem
	onChange ChangeFunc
}

func NewStore(items []LineItem, onChange ChangeFunc) *Store {
	s := &Store{onChange: onChange}
	for _, it := range items {
		s.items = append(s.items, it.clone())
	}
	return s
}

// Validate checks that size and color select an offered variant of p.
func Validate(p catalog.Product, size, color string) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}
	v := p.Variants()
	if !v.HasVariants() {
		return ErrNoVariants
	}
	if size == "" {
		return ErrSizeRequired
	}
	if s, ok := v.FindSize(size); !ok || !s.Available {
		return ErrSizeUnavailable
	}
	if len(p.Colors) == 0 {
		if color != "" {
			return ErrUnknownColor
		}
		return nil
	}
	if color == "" {
		return ErrColorRequired
	}
	if _, ok := v.FindColor(color); !ok {
		return ErrUnknownColor
	}
	return nil
}

// Add increments the matching line item or appends a new one with quantity 1.
func (s *Store) Add(ctx context.Context, p catalog.Product, size, color string) (LineItem, error) {
	if err := Validate(p, size, color); err != nil {
		return LineItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key{ProductID: p.ID, Size: size, Color: color}
	var added LineItem
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity++
		added = s.items[i].clone()
	} else {
		added = LineItem{Product: p.Clone(), Size: size, Color: color, Quantity: 1}
		s.items = append(s.items, added)
		added = added.clone()
	}
	s.changed(ctx)
	return added, nil
}

func (s *Store) Remove(ctx context.Context, key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(key); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.changed(ctx)
}

// UpdateQuantity sets the quantity of an item. Zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, key Key, quantity int) error {
	if quantity <= 0 {
		s.Remove(ctx, key)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return ErrItemNotFound
	}
	s.items[i].Quantity = quantity
	s.changed(ctx)
	return nil
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.changed(ctx)
}

// Replace swaps the whole item list, e.g. when restoring a saved cart.
func (s *Store) Replace(ctx context.Context, items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.items[:0]
	for _, it := range items {
		s.items = append(s.items, it.clone())
	}
	s.changed(ctx)
}

func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Total(s.items)
}

// Total sums the subtotals of items.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (s *Store) indexOf(key Key) int {
	for i := range s.items {
		if s.items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []LineItem {
	out := make([]LineItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.clone()
	}
	return out
}

// changed runs the hook with s.mu held so that hook writes happen in mutation order.
func (s *Store) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx, s.snapshot())
	}
}
