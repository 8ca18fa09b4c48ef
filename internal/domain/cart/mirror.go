package cart

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/example/apparel-storefront/internal/infrastructure/localstore"
	"github.com/example/apparel-storefront/internal/infrastructure/store"
)

var (
	ErrDeviceRequired = errors.New("device id is required")
	ErrNoSavedCart    = errors.New("no saved cart for this account")
)

// Encode serializes items in order.
func Encode(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

func Decode(data []byte) ([]LineItem, error) {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Mirror writes every cart change to the local store under "cart:<device>".
type Mirror struct {
	kv     localstore.KV
	logger *slog.Logger
}

func NewMirror(kv localstore.KV, logger *slog.Logger) *Mirror {
	return &Mirror{kv: kv, logger: logger}
}

func MirrorKey(deviceID string) string {
	return "cart:" + deviceID
}

// Load returns the mirrored items, or none when nothing was stored yet.
func (m *Mirror) Load(ctx context.Context, deviceID string) ([]LineItem, error) {
	data, err := m.kv.Get(ctx, MirrorKey(deviceID))
	if errors.Is(err, localstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Hook returns the on-change function for one device. The write is detached
// from cancellation because the in-memory change has already happened.
func (m *Mirror) Hook(deviceID string) ChangeFunc {
	key := MirrorKey(deviceID)
	return func(ctx context.Context, items []LineItem) {
		data, err := Encode(items)
		if err == nil {
			err = m.kv.Put(context.WithoutCancel(ctx), key, data)
		}
		if err != nil {
			m.logger.Error("mirror cart", "device_id", deviceID, "error", err)
		}
	}
}

// DefaultResidentCarts bounds how many device carts stay in memory.
const DefaultResidentCarts = 1024

type residentCart struct {
	deviceID string
	store    *Store
}

// Registry hands out one Store per device, hydrated from the mirror on first
// use. Only the most recently used carts stay resident; an evicted cart is
// rebuilt from the mirror on its next Open.
type Registry struct {
	mu       sync.Mutex
	stores   map[string]*list.Element
	recent   *list.List
	capacity int

	mirror *Mirror
	saved  store.UserCartStore
	logger *slog.Logger
}

func NewRegistry(kv localstore.KV, saved store.UserCartStore, logger *slog.Logger) *Registry {
	return &Registry{
		stores:   make(map[string]*list.Element),
		recent:   list.New(),
		capacity: DefaultResidentCarts,
		mirror:   NewMirror(kv, logger),
		saved:    saved,
		logger:   logger,
	}
}

// Open returns the device's cart for mutation and keeps it resident.
func (r *Registry) Open(ctx context.Context, deviceID string) (*Store, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.stores[deviceID]; ok {
		r.recent.MoveToFront(el)
		return el.Value.(*residentCart).store, nil
	}

	s := NewStore(r.hydrate(ctx, deviceID), r.mirror.Hook(deviceID))
	r.stores[deviceID] = r.recent.PushFront(&residentCart{deviceID: deviceID, store: s})
	for r.recent.Len() > r.capacity {
		oldest := r.recent.Back()
		r.recent.Remove(oldest)
		delete(r.stores, oldest.Value.(*residentCart).deviceID)
	}
	return s, nil
}

// Peek returns the device's cart for reading. A cart that is not resident is
// read from the mirror into a detached Store and is not kept.
func (r *Registry) Peek(ctx context.Context, deviceID string) (*Store, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.stores[deviceID]; ok {
		return el.Value.(*residentCart).store, nil
	}
	return NewStore(r.hydrate(ctx, deviceID), nil), nil
}

// Resident reports how many carts are held in memory.
func (r *Registry) Resident() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.recent.Len()
}

// hydrate must be called with r.mu held.
func (r *Registry) hydrate(ctx context.Context, deviceID string) []LineItem {
	items, err := r.mirror.Load(ctx, deviceID)
	if err != nil {
		// Unreadable local data is dropped rather than blocking the cart.
		r.logger.Warn("hydrate cart", "device_id", deviceID, "error", err)
		return nil
	}
	return items
}

// SaveForUser copies the device cart to the account's saved cart.
func (r *Registry) SaveForUser(ctx context.Context, deviceID, email string) error {
	s, err := r.Peek(ctx, deviceID)
	if err != nil {
		return err
	}
	data, err := Encode(s.Items())
	if err != nil {
		return err
	}
	if err := r.saved.UpsertUserCart(ctx, email, data); err != nil {
		return fmt.Errorf("save cart for %s: %w", email, err)
	}
	return nil
}

// RestoreForUser replaces the device cart with the account's saved cart.
func (r *Registry) RestoreForUser(ctx context.Context, deviceID, email string) (*Store, error) {
	s, err := r.Open(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	row, err := r.saved.GetUserCart(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoSavedCart
	}
	if err != nil {
		return nil, fmt.Errorf("load saved cart for %s: %w", email, err)
	}
	items, err := Decode(row.CartData)
	if err != nil {
		return nil, fmt.Errorf("decode saved cart for %s: %w", email, err)
	}
	s.Replace(ctx, items)
	return s, nil
}
