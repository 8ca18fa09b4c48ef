package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/apparel-storefront/internal/infrastructure/store"
)

// Product is a catalog record. Images[0] is the primary image and ImageURL
// mirrors it for older readers.
type Product struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CardColor     string          `json:"cardColor"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl"`
	Images        []string        `json:"images"`
	Sizes         []Size          `json:"sizes"`
	Colors        []Color         `json:"colors"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (p Product) Variants() Variants {
	return Variants{Sizes: p.Sizes, Colors: p.Colors}
}

// PrimaryImage returns the first gallery image, falling back to ImageURL.
func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.ImageURL
}

// Clone returns a deep copy so callers never share slices with the catalog.
func (p Product) Clone() Product {
	c := p
	c.Images = append([]string(nil), p.Images...)
	c.Sizes = append([]Size(nil), p.Sizes...)
	c.Colors = append([]Color(nil), p.Colors...)
	return c
}

// Draft is a product before it has an id.
type Draft struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CardColor     string          `json:"cardColor"`
	StockQuantity int             `json:"stockQuantity"`
	Images        []string        `json:"images"`
	Sizes         []Size          `json:"sizes"`
	Colors        []Color         `json:"colors"`
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrInvalidTitle
	}
	if err := checkPrice(d.Price); err != nil {
		return err
	}
	if d.StockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// checkPrice matches the NUMERIC(12,2) price column.
func checkPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if !price.Equal(price.Round(2)) {
		return ErrPricePrecision
	}
	return nil
}

// Patch is a partial product update. Nil fields are left untouched.
type Patch struct {
	Title         *string          `json:"title,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	CardColor     *string          `json:"cardColor,omitempty"`
	StockQuantity *int             `json:"stockQuantity,omitempty"`
	Images        *[]string        `json:"images,omitempty"`
	Sizes         *[]Size          `json:"sizes,omitempty"`
	Colors        *[]Color         `json:"colors,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.CardColor == nil &&
		p.StockQuantity == nil && p.Images == nil && p.Sizes == nil && p.Colors == nil
}

func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrInvalidTitle
	}
	if p.Price != nil {
		if err := checkPrice(*p.Price); err != nil {
			return err
		}
	}
	if p.StockQuantity != nil && *p.StockQuantity < 0 {
		return ErrInvalidStock
	}
	return nil
}

// columns returns only the columns this patch touches. Touching images also
// rewrites image_url.
func (p Patch) columns() (store.Fields, error) {
	f := store.Fields{}
	if p.Title != nil {
		f[store.ColTitle] = *p.Title
	}
	if p.Description != nil {
		f[store.ColDescription] = *p.Description
	}
	if p.Price != nil {
		f[store.ColPrice] = *p.Price
	}
	if p.CardColor != nil {
		f[store.ColCardColor] = *p.CardColor
	}
	if p.StockQuantity != nil {
		f[store.ColStockQuantity] = *p.StockQuantity
	}
	if p.Images != nil {
		raw, err := marshalList(*p.Images)
		if err != nil {
			return nil, err
		}
		f[store.ColImages] = raw
		f[store.ColImageURL] = firstOrEmpty(*p.Images)
	}
	if p.Sizes != nil {
		raw, err := marshalList(*p.Sizes)
		if err != nil {
			return nil, err
		}
		f[store.ColSizes] = raw
	}
	if p.Colors != nil {
		raw, err := marshalList(*p.Colors)
		if err != nil {
			return nil, err
		}
		f[store.ColColors] = raw
	}
	return f, nil
}

func (p Patch) apply(dst *Product) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.CardColor != nil {
		dst.CardColor = *p.CardColor
	}
	if p.StockQuantity != nil {
		dst.StockQuantity = *p.StockQuantity
	}
	if p.Images != nil {
		dst.Images = append([]string(nil), (*p.Images)...)
		dst.ImageURL = firstOrEmpty(dst.Images)
	}
	if p.Sizes != nil {
		dst.Sizes = append([]Size(nil), (*p.Sizes)...)
	}
	if p.Colors != nil {
		dst.Colors = append([]Color(nil), (*p.Colors)...)
	}
}

func productFromRow(row store.ProductRow) (Product, error) {
	p := Product{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		Price:         row.Price,
		CardColor:     row.CardColor,
		StockQuantity: row.StockQuantity,
		ImageURL:      row.ImageURL,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if err := unmarshalList(row.Images, &p.Images); err != nil {
		return Product{}, fmt.Errorf("product %s images: %w", row.ID, err)
	}
	if err := unmarshalList(row.Sizes, &p.Sizes); err != nil {
		return Product{}, fmt.Errorf("product %s sizes: %w", row.ID, err)
	}
	if err := unmarshalList(row.Colors, &p.Colors); err != nil {
		return Product{}, fmt.Errorf("product %s colors: %w", row.ID, err)
	}
	// Rows written before the gallery existed only carry image_url.
	if len(p.Images) == 0 && p.ImageURL != "" {
		p.Images = []string{p.ImageURL}
	}
	return p, nil
}

func (p Product) toRow() (store.ProductRow, error) {
	images, err := marshalList(p.Images)
	if err != nil {
		return store.ProductRow{}, err
	}
	sizes, err := marshalList(p.Sizes)
	if err != nil {
		return store.ProductRow{}, err
	}
	colors, err := marshalList(p.Colors)
	if err != nil {
		return store.ProductRow{}, err
	}
	return store.ProductRow{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		CardColor:     p.CardColor,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		Images:        images,
		Sizes:         sizes,
		Colors:        colors,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

// marshalList encodes a slice as a JSON array, never "null".
func marshalList[T any](items []T) (json.RawMessage, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}

func unmarshalList[T any](raw json.RawMessage, dst *[]T) error {
	if len(raw) == 0 || string(raw) == "null" {
		*dst = []T{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func firstOrEmpty(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}
