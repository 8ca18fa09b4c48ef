package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/apparel-storefront/internal/events"
	"github.com/example/apparel-storefront/internal/infrastructure/localstore"
	"github.com/example/apparel-storefront/internal/infrastructure/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidTitle    = errors.New("title is required")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrPricePrecision  = errors.New("price cannot have more than 2 decimal places")
	ErrInvalidStock    = errors.New("stock quantity cannot be negative")
	ErrInvalidSize     = errors.New("invalid size")
	ErrDuplicateSize   = errors.New("size already exists for this product")
	ErrSizesLocked     = errors.New("sizes can only change availability")
	ErrInvalidColor    = errors.New("invalid color")
	ErrDuplicateColor  = errors.New("color already exists for this product")
	ErrColorNotFound   = errors.New("color not found")
	ErrSizeNotFound    = errors.New("size not found")
)

// CacheKey is the local store key holding the last successfully loaded catalog.
const CacheKey = "catalog:products"

// Service owns the in-memory product collection. Mutations are confirmed:
// the collection changes only after the remote store accepts the write.
type Service struct {
	mu       sync.RWMutex
	products []Product

	cacheMu sync.Mutex

	repo      store.ProductStore
	cache     localstore.KV
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo store.ProductStore, cache localstore.KV, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Load replaces the collection with the remote one and mirrors it to the
// local cache. When the remote read fails and nothing is loaded yet, the
// cached copy is used instead; the remote error is still returned.
func (s *Service) Load(ctx context.Context) error {
	rows, err := s.repo.ListProducts(ctx)
	if err == nil {
		var products []Product
		products, err = productsFromRows(rows)
		if err == nil {
			s.cacheMu.Lock()
			s.mu.Lock()
			s.products = products
			s.mu.Unlock()
			s.writeCache(ctx, products)
			s.cacheMu.Unlock()
			return nil
		}
	}

	s.logger.Error("load products", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.products) == 0 {
		if cached, cacheErr := s.readCache(ctx); cacheErr == nil {
			s.products = cached
			s.logger.Info("products restored from local cache", "count", len(cached))
		} else if !errors.Is(cacheErr, localstore.ErrNotFound) {
			s.logger.Warn("read product cache", "error", cacheErr)
		}
	}
	return fmt.Errorf("load products: %w", err)
}

// Revalidate re-fetches the collection. It is what the admin "refresh" action
// and change events from other instances trigger.
func (s *Service) Revalidate(ctx context.Context) error {
	return s.Load(ctx)
}

// List returns copies of all products in load order.
func (s *Service) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

func (s *Service) Get(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.products[i].Clone(), nil
	}
	return Product{}, ErrProductNotFound
}

// Add creates a product. Products without sizes get DefaultSizes.
func (s *Service) Add(ctx context.Context, d Draft) (Product, error) {
	if err := d.Validate(); err != nil {
		return Product{}, err
	}
	sizes, err := CheckSizes(d.Sizes)
	if err != nil {
		return Product{}, err
	}
	colors, err := CheckColors(d.Colors)
	if err != nil {
		return Product{}, err
	}

	now := s.now()
	p := Product{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(d.Title),
		Description:   d.Description,
		Price:         d.Price,
		CardColor:     d.CardColor,
		StockQuantity: d.StockQuantity,
		Images:        append([]string{}, d.Images...),
		Sizes:         sizes,
		Colors:        colors,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if len(p.Sizes) == 0 {
		p.Sizes = DefaultSizes()
	}
	p.ImageURL = firstOrEmpty(p.Images)

	row, err := p.toRow()
	if err != nil {
		return Product{}, err
	}
	if err := s.repo.InsertProduct(ctx, row); err != nil {
		s.logger.Error("insert product", "error", err)
		return Product{}, fmt.Errorf("insert product: %w", err)
	}

	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()

	s.persist(ctx)
	s.publish(ctx, events.ProductCreated, p)
	return p.Clone(), nil
}

// Update writes only the patched columns and then merges them into the
// in-memory record. Sizes may only change availability; ToggleSize is the
// usual way to do that.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (Product, error) {
	if err := patch.Validate(); err != nil {
		return Product{}, err
	}
	current, err := s.Get(id)
	if err != nil {
		return Product{}, err
	}
	if patch.IsEmpty() {
		return current, nil
	}
	if patch.Sizes != nil && !sameSizeSet(current.Sizes, *patch.Sizes) {
		return Product{}, ErrSizesLocked
	}
	if patch.Colors != nil {
		colors, err := CheckColors(*patch.Colors)
		if err != nil {
			return Product{}, err
		}
		patch.Colors = &colors
	}

	fields, err := patch.columns()
	if err != nil {
		return Product{}, err
	}
	if err := s.repo.UpdateProduct(ctx, id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Product{}, ErrProductNotFound
		}
		s.logger.Error("update product", "product_id", id, "error", err)
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return Product{}, ErrProductNotFound
	}
	patch.apply(&s.products[i])
	s.products[i].UpdatedAt = s.now()
	updated := s.products[i].Clone()
	s.mu.Unlock()

	s.persist(ctx)
	s.publish(ctx, events.ProductUpdated, updated)
	return updated, nil
}

// Remove deletes the product remotely, then drops it from the collection.
// A row that is already gone remotely is dropped locally as well.
func (s *Service) Remove(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("delete product", "product_id", id, "error", err)
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.products = append(s.products[:i], s.products[i+1:]...)
	}
	s.mu.Unlock()

	s.persist(ctx)
	s.publish(ctx, events.ProductDeleted, map[string]string{"id": id})
	return nil
}

// ToggleSize flips the availability of one size.
func (s *Service) ToggleSize(ctx context.Context, id, sizeID string) (Product, error) {
	p, err := s.Get(id)
	if err != nil {
		return Product{}, err
	}

	sizes := p.Sizes
	found := false
	for i := range sizes {
		if sizes[i].ID == sizeID {
			sizes[i].Available = !sizes[i].Available
			found = true
			break
		}
	}
	if !found {
		return Product{}, ErrSizeNotFound
	}
	return s.Update(ctx, id, Patch{Sizes: &sizes})
}

// AddColor appends a color. A name whose derived id is already taken is rejected.
func (s *Service) AddColor(ctx context.Context, id, name, hex string) (Product, error) {
	color, err := NewColor(name, hex)
	if err != nil {
		return Product{}, err
	}
	p, err := s.Get(id)
	if err != nil {
		return Product{}, err
	}
	if _, exists := p.Variants().FindColor(color.ID); exists {
		return Product{}, fmt.Errorf("%w: %s", ErrDuplicateColor, color.ID)
	}

	colors := append(p.Colors, color)
	return s.Update(ctx, id, Patch{Colors: &colors})
}

func (s *Service) RemoveColor(ctx context.Context, id, colorID string) (Product, error) {
	p, err := s.Get(id)
	if err != nil {
		return Product{}, err
	}

	colors := make([]Color, 0, len(p.Colors))
	for _, c := range p.Colors {
		if c.ID != colorID {
			colors = append(colors, c)
		}
	}
	if len(colors) == len(p.Colors) {
		return Product{}, ErrColorNotFound
	}
	return s.Update(ctx, id, Patch{Colors: &colors})
}

// AppendImages adds urls to the end of the gallery in one confirmed update.
func (s *Service) AppendImages(ctx context.Context, id string, urls []string) (Product, error) {
	p, err := s.Get(id)
	if err != nil {
		return Product{}, err
	}
	images := append(p.Images, urls...)
	return s.Update(ctx, id, Patch{Images: &images})
}

// indexOf must be called with s.mu held.
func (s *Service) indexOf(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) publish(ctx context.Context, eventType string, data any) {
	var key string
	switch v := data.(type) {
	case Product:
		key = v.ID
	case map[string]string:
		key = v["id"]
	}
	if err := s.publisher.Publish(ctx, eventType, key, data); err != nil {
		s.logger.Warn("publish catalog event", "type", eventType, "product_id", key, "error", err)
	}
}

// persist mirrors the collection after a confirmed change. The write outlives
// a cancelled request since the remote write already happened.
func (s *Service) persist(ctx context.Context) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.writeCache(context.WithoutCancel(ctx), s.List())
}

func (s *Service) writeCache(ctx context.Context, products []Product) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(products)
	if err == nil {
		err = s.cache.Put(ctx, CacheKey, data)
	}
	if err != nil {
		s.logger.Warn("write product cache", "error", err)
	}
}

func (s *Service) readCache(ctx context.Context) ([]Product, error) {
	if s.cache == nil {
		return nil, localstore.ErrNotFound
	}
	data, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		return nil, err
	}
	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func productsFromRows(rows []store.ProductRow) ([]Product, error) {
	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		p, err := productFromRow(row)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
