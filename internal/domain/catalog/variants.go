package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Size is a purchasable size. ID is stable across edits and is what carts
// and availability toggles refer to.
type Size struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Available   bool   `json:"available"`
	IsChildSize bool   `json:"isChildSize"`
}

// Color is a named color option. ID is derived from Name (see ColorID).
type Color struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var (
	adultSizeNames = []string{"XS", "S", "M", "L", "XL", "XXL"}
	childSizeNames = []string{"2", "4", "6", "8", "10", "12"}

	whitespaceRun = regexp.MustCompile(`\s+`)
	hexColor      = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// DefaultSizes is the size set every new product starts with, all available.
func DefaultSizes() []Size {
	sizes := make([]Size, 0, len(adultSizeNames)+len(childSizeNames))
	for _, name := range adultSizeNames {
		sizes = append(sizes, Size{ID: name, Name: name, Available: true})
	}
	for _, name := range childSizeNames {
		sizes = append(sizes, Size{ID: name, Name: "Talla " + name, Available: true, IsChildSize: true})
	}
	return sizes
}

// ColorID lowercases name and replaces whitespace runs with "-".
func ColorID(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// NewColor builds a color from admin input.
func NewColor(name, hex string) (Color, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Color{}, fmt.Errorf("%w: name is required", ErrInvalidColor)
	}
	if !hexColor.MatchString(hex) {
		return Color{}, fmt.Errorf("%w: %q is not a hex color", ErrInvalidColor, hex)
	}
	return Color{ID: ColorID(name), Name: name, Hex: strings.ToLower(hex)}, nil
}

// CheckSizes rejects blank or repeated size ids. Blank names take the id.
func CheckSizes(sizes []Size) ([]Size, error) {
	out := make([]Size, 0, len(sizes))
	seen := make(map[string]bool, len(sizes))
	for _, s := range sizes {
		s.ID = strings.TrimSpace(s.ID)
		if s.ID == "" {
			return nil, fmt.Errorf("%w: id is required", ErrInvalidSize)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSize, s.ID)
		}
		seen[s.ID] = true
		if strings.TrimSpace(s.Name) == "" {
			s.Name = s.ID
		}
		out = append(out, s)
	}
	return out, nil
}

// sameSizeSet reports whether next only differs from current in availability.
func sameSizeSet(current, next []Size) bool {
	if len(current) != len(next) {
		return false
	}
	for i := range current {
		a, b := current[i], next[i]
		if a.ID != b.ID || a.Name != b.Name || a.IsChildSize != b.IsChildSize {
			return false
		}
	}
	return true
}

// CheckColors rebuilds every color through NewColor and rejects repeated ids.
// A color sent with an id must carry the id its name derives to.
func CheckColors(colors []Color) ([]Color, error) {
	out := make([]Color, 0, len(colors))
	seen := make(map[string]bool, len(colors))
	for _, c := range colors {
		built, err := NewColor(c.Name, c.Hex)
		if err != nil {
			return nil, err
		}
		if c.ID != "" && c.ID != built.ID {
			return nil, fmt.Errorf("%w: id %q does not match name %q", ErrInvalidColor, c.ID, built.Name)
		}
		if seen[built.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColor, built.ID)
		}
		seen[built.ID] = true
		out = append(out, built)
	}
	return out, nil
}

// Variants exposes filtered views over a product's sizes and colors.
type Variants struct {
	Sizes  []Size
	Colors []Color
}

func (v Variants) AvailableSizes() []Size {
	return filterSizes(v.Sizes, func(s Size) bool { return s.Available })
}

// AdultSizes returns available sizes that are not child sizes.
func (v Variants) AdultSizes() []Size {
	return filterSizes(v.Sizes, func(s Size) bool { return s.Available && !s.IsChildSize })
}

func (v Variants) ChildSizes() []Size {
	return filterSizes(v.Sizes, func(s Size) bool { return s.Available && s.IsChildSize })
}

func (v Variants) ColorOptions() []Color {
	out := make([]Color, len(v.Colors))
	copy(out, v.Colors)
	return out
}

// HasVariants reports whether any size is configured. Products without sizes
// cannot be added to a cart.
func (v Variants) HasVariants() bool {
	return len(v.Sizes) > 0
}

func (v Variants) FindSize(id string) (Size, bool) {
	for _, s := range v.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return Size{}, false
}

func (v Variants) FindColor(id string) (Color, bool) {
	for _, c := range v.Colors {
		if c.ID == id {
			return c, true
		}
	}
	return Color{}, false
}

func filterSizes(sizes []Size, keep func(Size) bool) []Size {
	out := make([]Size, 0, len(sizes))
	for _, s := range sizes {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
