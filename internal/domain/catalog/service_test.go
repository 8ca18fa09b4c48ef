package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/apparel-storefront/internal/events"
	"github.com/example/apparel-storefront/internal/infrastructure/localstore"
	"github.com/example/apparel-storefront/internal/infrastructure/store"
	"github.com/example/apparel-storefront/internal/infrastructure/store/mocks"
	"github.com/example/apparel-storefront/internal/logging"
)

type testDeps struct {
	repo      *mocks.MockProductStore
	cache     *localstore.Memory
	publisher *events.Recorder
}

func newTestCatalogService() (*Service, testDeps) {
	deps := testDeps{
		repo:      mocks.NewMockProductStore(),
		cache:     localstore.NewMemory(),
		publisher: &events.Recorder{},
	}
	return NewService(deps.repo, deps.cache, deps.publisher, logging.Discard()), deps
}

func validDraft() Draft {
	return Draft{
		Title:         "Camiseta Logo",
		Description:   "Algodón peinado",
		Price:         decimal.RequireFromString("10.00"),
		CardColor:     "#ffffff",
		StockQuantity: 5,
		Images:        []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"},
	}
}

func strPtr(s string) *string { return &s }

// ============================================
// Add Tests
// ============================================

func TestService_Add_ValidProduct(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()

	p, err := service.Add(ctx, validDraft())

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "https://cdn.test/a.jpg", p.ImageURL)
	assert.Len(t, p.Sizes, 12)
	assert.Empty(t, p.Colors)

	require.Len(t, deps.repo.InsertCalls, 1)
	row := deps.repo.InsertCalls[0]
	assert.Equal(t, p.ID, row.ID)
	assert.Equal(t, "https://cdn.test/a.jpg", row.ImageURL)
	assert.JSONEq(t, `["https://cdn.test/a.jpg","https://cdn.test/b.jpg"]`, string(row.Images))
	assert.JSONEq(t, `[]`, string(row.Colors))

	assert.Len(t, service.List(), 1)
	assert.Equal(t, []string{events.ProductCreated}, deps.publisher.Types())
}

func TestService_Add_KeepsGivenSizes(t *testing.T) {
	service, _ := newTestCatalogService()
	d := validDraft()
	d.Sizes = []Size{{ID: "U", Name: "Única", Available: true}}

	p, err := service.Add(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, []string{"U"}, sizeIDs(p.Sizes))
}

func TestService_Add_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"empty title", func(d *Draft) { d.Title = "  " }, ErrInvalidTitle},
		{"zero price", func(d *Draft) { d.Price = decimal.Zero }, ErrInvalidPrice},
		{"negative price", func(d *Draft) { d.Price = decimal.NewFromInt(-3) }, ErrInvalidPrice},
		{"negative stock", func(d *Draft) { d.StockQuantity = -1 }, ErrInvalidStock},
		{"price below a cent", func(d *Draft) { d.Price = decimal.RequireFromString("10.005") }, ErrPricePrecision},
		{"blank size id", func(d *Draft) { d.Sizes = []Size{{ID: "M"}, {ID: " "}} }, ErrInvalidSize},
		{"repeated size id", func(d *Draft) { d.Sizes = []Size{{ID: "M"}, {ID: "M"}} }, ErrDuplicateSize},
		{"non-hex color", func(d *Draft) { d.Colors = []Color{{Name: "Blanco", Hex: "white"}} }, ErrInvalidColor},
		{"repeated color id", func(d *Draft) {
			d.Colors = []Color{{Name: "Azul Rey", Hex: "#1f3fbf"}, {Name: "azul  rey", Hex: "#000"}}
		}, ErrDuplicateColor},
		{"color id not derived from name", func(d *Draft) {
			d.Colors = []Color{{ID: "rojo", Name: "Blanco", Hex: "#fff"}}
		}, ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, deps := newTestCatalogService()
			d := validDraft()
			tt.mutate(&d)

			_, err := service.Add(context.Background(), d)

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, deps.repo.InsertCalls)
			assert.Empty(t, service.List())
		})
	}
}

func TestService_Add_NormalizesColors(t *testing.T) {
	service, _ := newTestCatalogService()
	d := validDraft()
	d.Colors = []Color{{Name: " Azul Rey ", Hex: "#1F3FBF"}, {ID: "blanco", Name: "Blanco", Hex: "#fff"}}

	p, err := service.Add(context.Background(), d)

	require.NoError(t, err)
	assert.Equal(t, []Color{
		{ID: "azul-rey", Name: "Azul Rey", Hex: "#1f3fbf"},
		{ID: "blanco", Name: "Blanco", Hex: "#fff"},
	}, p.Colors)
}

func TestService_Add_RemoteFailureLeavesCollection(t *testing.T) {
	service, deps := newTestCatalogService()
	deps.repo.InsertErr = errors.New("connection refused")

	_, err := service.Add(context.Background(), validDraft())

	assert.Error(t, err)
	assert.Empty(t, service.List())
	assert.Empty(t, deps.publisher.Events())
}

// ============================================
// Update Tests
// ============================================

func TestService_Update_SendsOnlyPatchedColumns(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	updated, err := service.Update(ctx, p.ID, Patch{Title: strPtr("Camiseta Nueva")})

	require.NoError(t, err)
	require.Len(t, deps.repo.UpdateCalls, 1)
	assert.Equal(t, []string{store.ColTitle}, deps.repo.UpdateCalls[0].Fields.Columns())
	assert.Equal(t, "Camiseta Nueva", updated.Title)
	assert.Equal(t, p.Description, updated.Description)
	assert.True(t, p.Price.Equal(updated.Price))
}

func TestService_Update_ImagesRewritePrimary(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	images := []string{"https://cdn.test/c.jpg"}
	updated, err := service.Update(ctx, p.ID, Patch{Images: &images})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/c.jpg", updated.ImageURL)
	fields := deps.repo.UpdateCalls[0].Fields
	assert.Equal(t, []string{store.ColImageURL, store.ColImages}, fields.Columns())
	assert.Equal(t, "https://cdn.test/c.jpg", fields[store.ColImageURL])
}

func TestService_Update_RemoteFailureLeavesRecord(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)
	deps.repo.UpdateErr = errors.New("timeout")

	_, err = service.Update(ctx, p.ID, Patch{Title: strPtr("Otro")})

	assert.Error(t, err)
	current, err := service.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camiseta Logo", current.Title)
}

func TestService_Update_InvalidPatch(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	zero := decimal.Zero
	_, err = service.Update(ctx, p.ID, Patch{Price: &zero})

	assert.ErrorIs(t, err, ErrInvalidPrice)
	assert.Empty(t, deps.repo.UpdateCalls)
}

func TestService_Update_SizesOnlyChangeAvailability(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]Size) []Size
	}{
		{"repeated ids", func(s []Size) []Size { return []Size{{ID: "M"}, {ID: "M"}, {ID: ""}} }},
		{"renamed size", func(s []Size) []Size { s[0].Name = "Extra Small"; return s }},
		{"changed id", func(s []Size) []Size { s[0].ID = "XXS"; return s }},
		{"dropped size", func(s []Size) []Size { return s[1:] }},
		{"added size", func(s []Size) []Size { return append(s, Size{ID: "XXXL", Available: true}) }},
		{"reordered", func(s []Size) []Size { s[0], s[1] = s[1], s[0]; return s }},
		{"child flag flipped", func(s []Size) []Size { s[0].IsChildSize = true; return s }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, deps := newTestCatalogService()
			ctx := context.Background()
			p, err := service.Add(ctx, validDraft())
			require.NoError(t, err)

			sizes := tt.mutate(p.Sizes)
			_, err = service.Update(ctx, p.ID, Patch{Sizes: &sizes})

			assert.ErrorIs(t, err, ErrSizesLocked)
			assert.Empty(t, deps.repo.UpdateCalls)
			current, err := service.Get(p.ID)
			require.NoError(t, err)
			assert.Equal(t, DefaultSizes(), current.Sizes)
		})
	}
}

func TestService_Update_SizeAvailabilityPatch(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	sizes := p.Sizes
	sizes[0].Available = false
	updated, err := service.Update(ctx, p.ID, Patch{Sizes: &sizes})

	require.NoError(t, err)
	assert.False(t, updated.Sizes[0].Available)
}

func TestService_Update_ColorRules(t *testing.T) {
	tests := []struct {
		name   string
		colors []Color
		want   error
	}{
		{"repeated id", []Color{{ID: "blanco", Name: "Blanco", Hex: "#fff"}, {ID: "blanco", Name: "Blanco", Hex: "#eee"}}, ErrDuplicateColor},
		{"non-hex", []Color{{ID: "blanco", Name: "Blanco", Hex: "#fff"}, {ID: "negro", Name: "Negro", Hex: "not-a-hex"}}, ErrInvalidColor},
		{"missing name", []Color{{ID: "blanco", Hex: "#fff"}}, ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, deps := newTestCatalogService()
			ctx := context.Background()
			p, err := service.Add(ctx, validDraft())
			require.NoError(t, err)

			colors := tt.colors
			_, err = service.Update(ctx, p.ID, Patch{Colors: &colors})

			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, deps.repo.UpdateCalls)
		})
	}
}

func TestService_Update_PricePrecision(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	price := decimal.RequireFromString("10.005")
	_, err = service.Update(ctx, p.ID, Patch{Price: &price})
	assert.ErrorIs(t, err, ErrPricePrecision)

	price = decimal.RequireFromString("10.50")
	updated, err := service.Update(ctx, p.ID, Patch{Price: &price})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Len(t, deps.repo.UpdateCalls, 1)
}

func TestService_Update_UnknownProduct(t *testing.T) {
	service, _ := newTestCatalogService()

	_, err := service.Update(context.Background(), "missing", Patch{Title: strPtr("x")})

	assert.ErrorIs(t, err, ErrProductNotFound)
}

// ============================================
// Remove Tests
// ============================================

func TestService_Remove(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	require.NoError(t, service.Remove(ctx, p.ID))

	assert.Empty(t, service.List())
	assert.Equal(t, []string{p.ID}, deps.repo.DeleteCalls)
	assert.Equal(t, []string{events.ProductCreated, events.ProductDeleted}, deps.publisher.Types())
}

func TestService_Remove_RemoteFailureKeepsRecord(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)
	deps.repo.DeleteErr = errors.New("permission denied")

	err = service.Remove(ctx, p.ID)

	assert.Error(t, err)
	assert.Len(t, service.List(), 1)
}

// ============================================
// Variant edit Tests
// ============================================

func TestService_ToggleSize(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	updated, err := service.ToggleSize(ctx, p.ID, "M")
	require.NoError(t, err)

	m, ok := updated.Variants().FindSize("M")
	require.True(t, ok)
	assert.False(t, m.Available)
	assert.NotContains(t, sizeIDs(updated.Variants().AdultSizes()), "M")

	_, err = service.ToggleSize(ctx, p.ID, "XXXL")
	assert.ErrorIs(t, err, ErrSizeNotFound)
}

func TestService_AddAndRemoveColor(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	updated, err := service.AddColor(ctx, p.ID, "Azul Marino", "#1f2a44")
	require.NoError(t, err)
	require.Len(t, updated.Colors, 1)
	assert.Equal(t, "azul-marino", updated.Colors[0].ID)

	_, err = service.AddColor(ctx, p.ID, "azul   MARINO", "#000000")
	assert.ErrorIs(t, err, ErrDuplicateColor)

	updated, err = service.RemoveColor(ctx, p.ID, "azul-marino")
	require.NoError(t, err)
	assert.Empty(t, updated.Colors)

	_, err = service.RemoveColor(ctx, p.ID, "azul-marino")
	assert.ErrorIs(t, err, ErrColorNotFound)
}

func TestService_ListReturnsCopies(t *testing.T) {
	service, _ := newTestCatalogService()
	ctx := context.Background()
	p, err := service.Add(ctx, validDraft())
	require.NoError(t, err)

	list := service.List()
	list[0].Title = "mutated"
	list[0].Sizes[0].Available = false

	current, err := service.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camiseta Logo", current.Title)
	assert.True(t, current.Sizes[0].Available)
}

// ============================================
// Load Tests
// ============================================

func TestService_Load_MirrorsToCache(t *testing.T) {
	service, deps := newTestCatalogService()
	deps.repo.Seed(store.ProductRow{
		ID:       "p-1",
		Title:    "Polo",
		Price:    decimal.NewFromInt(15),
		ImageURL: "https://cdn.test/legacy.jpg",
		Sizes:    json.RawMessage(`[{"id":"M","name":"M","available":true,"isChildSize":false}]`),
	})

	require.NoError(t, service.Load(context.Background()))

	list := service.List()
	require.Len(t, list, 1)
	assert.Equal(t, []string{"https://cdn.test/legacy.jpg"}, list[0].Images)
	assert.Equal(t, []string{"M"}, sizeIDs(list[0].Sizes))

	cached, err := deps.cache.Get(context.Background(), CacheKey)
	require.NoError(t, err)
	assert.Contains(t, string(cached), `"p-1"`)
}

func TestService_Load_FallsBackToCache(t *testing.T) {
	ctx := context.Background()
	cache := localstore.NewMemory()

	online := mocks.NewMockProductStore()
	online.Seed(store.ProductRow{ID: "p-1", Title: "Polo", Price: decimal.NewFromInt(15)})
	require.NoError(t, NewService(online, cache, nil, logging.Discard()).Load(ctx))

	offline := mocks.NewMockProductStore()
	offline.ListErr = errors.New("network down")
	service := NewService(offline, cache, nil, logging.Discard())

	err := service.Load(ctx)

	assert.Error(t, err)
	list := service.List()
	require.Len(t, list, 1)
	assert.Equal(t, "p-1", list[0].ID)
}

func TestService_MutationsRefreshCache(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	require.NoError(t, service.Load(ctx))

	kept, err := service.Add(ctx, validDraft())
	require.NoError(t, err)
	gone, err := service.Add(ctx, validDraft())
	require.NoError(t, err)
	_, err = service.Update(ctx, kept.ID, Patch{Title: strPtr("Camiseta Editada")})
	require.NoError(t, err)
	require.NoError(t, service.Remove(ctx, gone.ID))

	offline := mocks.NewMockProductStore()
	offline.ListErr = errors.New("network down")
	restarted := NewService(offline, deps.cache, nil, logging.Discard())

	assert.Error(t, restarted.Load(ctx))
	list := restarted.List()
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)
	assert.Equal(t, "Camiseta Editada", list[0].Title)
}

func TestService_Load_FailureKeepsLoadedCollection(t *testing.T) {
	service, deps := newTestCatalogService()
	ctx := context.Background()
	_, err := service.Add(ctx, validDraft())
	require.NoError(t, err)
	deps.repo.ListErr = errors.New("network down")

	assert.Error(t, service.Revalidate(ctx))
	assert.Len(t, service.List(), 1)
}
