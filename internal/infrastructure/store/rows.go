package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// products columns
const (
	ColTitle         = "title"
	ColDescription   = "description"
	ColPrice         = "price"
	ColCardColor     = "card_color"
	ColStockQuantity = "stock_quantity"
	ColImageURL      = "image_url"
	ColImages        = "images"
	ColColors        = "colors"
	ColSizes         = "sizes"
)

// site_info columns
const (
	ColSlogan         = "slogan"
	ColWhatsAppNumber = "whatsapp_number"
	ColCarouselImages = "carousel_images"
	ColMaterialsTitle = "materials_title"
	ColMaterialsDesc  = "materials_description"
	ColDesignTitle    = "design_title"
	ColDesignDesc     = "design_description"
	ColServiceTitle   = "service_title"
	ColServiceDesc    = "service_description"
	ColFAQTitle       = "faq_title"
)

// ProductRow is a products row. Images, Colors and Sizes are JSON arrays.
type ProductRow struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CardColor     string          `json:"card_color"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	Images        json.RawMessage `json:"images"`
	Colors        json.RawMessage `json:"colors"`
	Sizes         json.RawMessage `json:"sizes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SiteInfoRow is a site_info row. CarouselImages is a JSON array.
type SiteInfoRow struct {
	ID                   string          `json:"id"`
	Slogan               string          `json:"slogan"`
	WhatsAppNumber       string          `json:"whatsapp_number"`
	CarouselImages       json.RawMessage `json:"carousel_images"`
	MaterialsTitle       string          `json:"materials_title"`
	MaterialsDescription string          `json:"materials_description"`
	DesignTitle          string          `json:"design_title"`
	DesignDescription    string          `json:"design_description"`
	ServiceTitle         string          `json:"service_title"`
	ServiceDescription   string          `json:"service_description"`
	FAQTitle             string          `json:"faq_title"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

type UserCartRow struct {
	UserEmail string          `json:"user_email"`
	CartData  json.RawMessage `json:"cart_data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ApplyProductFields writes a partial update onto row. Unknown columns and
// mistyped values are rejected so that callers cannot write arbitrary columns.
func ApplyProductFields(row *ProductRow, fields Fields) error {
	for _, col := range fields.Columns() {
		v := fields[col]
		var ok bool
		switch col {
		case ColTitle:
			row.Title, ok = v.(string)
		case ColDescription:
			row.Description, ok = v.(string)
		case ColPrice:
			row.Price, ok = v.(decimal.Decimal)
		case ColCardColor:
			row.CardColor, ok = v.(string)
		case ColStockQuantity:
			row.StockQuantity, ok = v.(int)
		case ColImageURL:
			row.ImageURL, ok = v.(string)
		case ColImages:
			row.Images, ok = v.(json.RawMessage)
		case ColColors:
			row.Colors, ok = v.(json.RawMessage)
		case ColSizes:
			row.Sizes, ok = v.(json.RawMessage)
		default:
			return fmt.Errorf("unknown products column %q", col)
		}
		if !ok {
			return fmt.Errorf("invalid value type %T for products.%s", v, col)
		}
	}
	return nil
}

// ApplySiteInfoFields is the site_info counterpart of ApplyProductFields.
func ApplySiteInfoFields(row *SiteInfoRow, fields Fields) error {
	for _, col := range fields.Columns() {
		v := fields[col]
		var ok bool
		switch col {
		case ColSlogan:
			row.Slogan, ok = v.(string)
		case ColWhatsAppNumber:
			row.WhatsAppNumber, ok = v.(string)
		case ColCarouselImages:
			row.CarouselImages, ok = v.(json.RawMessage)
		case ColMaterialsTitle:
			row.MaterialsTitle, ok = v.(string)
		case ColMaterialsDesc:
			row.MaterialsDescription, ok = v.(string)
		case ColDesignTitle:
			row.DesignTitle, ok = v.(string)
		case ColDesignDesc:
			row.DesignDescription, ok = v.(string)
		case ColServiceTitle:
			row.ServiceTitle, ok = v.(string)
		case ColServiceDesc:
			row.ServiceDescription, ok = v.(string)
		case ColFAQTitle:
			row.FAQTitle, ok = v.(string)
		default:
			return fmt.Errorf("unknown site_info column %q", col)
		}
		if !ok {
			return fmt.Errorf("invalid value type %T for site_info.%s", v, col)
		}
	}
	return nil
}
