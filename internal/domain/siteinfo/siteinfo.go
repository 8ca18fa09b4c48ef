package siteinfo

import (
	"encoding/json"
	"fmt"

	"github.com/example/apparel-storefront/internal/infrastructure/store"
)

// SiteInfo is the editable storefront copy and contact configuration.
type SiteInfo struct {
	ID                   string   `json:"id,omitempty"`
	Slogan               string   `json:"slogan"`
	WhatsAppNumber       string   `json:"whatsappNumber"`
	CarouselImages       []string `json:"carouselImages"`
	MaterialsTitle       string   `json:"materialsTitle"`
	MaterialsDescription string   `json:"materialsDescription"`
	DesignTitle          string   `json:"designTitle"`
	DesignDescription    string   `json:"designDescription"`
	ServiceTitle         string   `json:"serviceTitle"`
	ServiceDescription   string   `json:"serviceDescription"`
	FAQTitle             string   `json:"faqTitle"`
}

// Defaults is the record created when the remote table is empty.
func Defaults() SiteInfo {
	return SiteInfo{
		Slogan:         "Prendas personalizadas que cuentan tu historia",
		WhatsAppNumber: "+57 300 000 0000",
		CarouselImages: []string{
			"/images/carousel-1.jpg",
			"/images/carousel-2.jpg",
			"/images/carousel-3.jpg",
		},
		MaterialsTitle:       "Materiales de calidad",
		MaterialsDescription: "Trabajamos con algodón y telas seleccionadas que se sienten bien y duran.",
		DesignTitle:          "Diseño a tu medida",
		DesignDescription:    "Creamos cada estampado contigo, desde la idea hasta la prenda terminada.",
		ServiceTitle:         "Atención personalizada",
		ServiceDescription:   "Te acompañamos por WhatsApp en todo el proceso de tu pedido.",
		FAQTitle:             "Preguntas frecuentes",
	}
}

func (s SiteInfo) clone() SiteInfo {
	s.CarouselImages = append([]string(nil), s.CarouselImages...)
	return s
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Slogan               *string   `json:"slogan,omitempty"`
	WhatsAppNumber       *string   `json:"whatsappNumber,omitempty"`
	CarouselImages       *[]string `json:"carouselImages,omitempty"`
	MaterialsTitle       *string   `json:"materialsTitle,omitempty"`
	MaterialsDescription *string   `json:"materialsDescription,omitempty"`
	DesignTitle          *string   `json:"designTitle,omitempty"`
	DesignDescription    *string   `json:"designDescription,omitempty"`
	ServiceTitle         *string   `json:"serviceTitle,omitempty"`
	ServiceDescription   *string   `json:"serviceDescription,omitempty"`
	FAQTitle             *string   `json:"faqTitle,omitempty"`
}

type stringField struct {
	col string
	val *string
	dst *string
}

// stringFields pairs each string patch field with its column and its target in dst.
func (p Patch) stringFields(dst *SiteInfo) []stringField {
	return []stringField{
		{store.ColSlogan, p.Slogan, &dst.Slogan},
		{store.ColWhatsAppNumber, p.WhatsAppNumber, &dst.WhatsAppNumber},
		{store.ColMaterialsTitle, p.MaterialsTitle, &dst.MaterialsTitle},
		{store.ColMaterialsDesc, p.MaterialsDescription, &dst.MaterialsDescription},
		{store.ColDesignTitle, p.DesignTitle, &dst.DesignTitle},
		{store.ColDesignDesc, p.DesignDescription, &dst.DesignDescription},
		{store.ColServiceTitle, p.ServiceTitle, &dst.ServiceTitle},
		{store.ColServiceDesc, p.ServiceDescription, &dst.ServiceDescription},
		{store.ColFAQTitle, p.FAQTitle, &dst.FAQTitle},
	}
}

func (p Patch) IsEmpty() bool {
	if p.CarouselImages != nil {
		return false
	}
	for _, f := range p.stringFields(&SiteInfo{}) {
		if f.val != nil {
			return false
		}
	}
	return true
}

func (p Patch) apply(dst *SiteInfo) {
	for _, f := range p.stringFields(dst) {
		if f.val != nil {
			*f.dst = *f.val
		}
	}
	if p.CarouselImages != nil {
		dst.CarouselImages = append([]string{}, (*p.CarouselImages)...)
	}
}

// columns returns only the columns this patch touches.
func (p Patch) columns() (store.Fields, error) {
	fields := store.Fields{}
	for _, f := range p.stringFields(&SiteInfo{}) {
		if f.val != nil {
			fields[f.col] = *f.val
		}
	}
	if p.CarouselImages != nil {
		raw, err := encodeImages(*p.CarouselImages)
		if err != nil {
			return nil, err
		}
		fields[store.ColCarouselImages] = raw
	}
	return fields, nil
}

func fromRow(row store.SiteInfoRow) (SiteInfo, error) {
	info := SiteInfo{
		ID:                   row.ID,
		Slogan:               row.Slogan,
		WhatsAppNumber:       row.WhatsAppNumber,
		MaterialsTitle:       row.MaterialsTitle,
		MaterialsDescription: row.MaterialsDescription,
		DesignTitle:          row.DesignTitle,
		DesignDescription:    row.DesignDescription,
		ServiceTitle:         row.ServiceTitle,
		ServiceDescription:   row.ServiceDescription,
		FAQTitle:             row.FAQTitle,
		CarouselImages:       []string{},
	}
	if len(row.CarouselImages) > 0 && string(row.CarouselImages) != "null" {
		if err := json.Unmarshal(row.CarouselImages, &info.CarouselImages); err != nil {
			return SiteInfo{}, fmt.Errorf("decode carousel_images: %w", err)
		}
	}
	return info, nil
}

func (s SiteInfo) toRow() (store.SiteInfoRow, error) {
	carousel, err := encodeImages(s.CarouselImages)
	if err != nil {
		return store.SiteInfoRow{}, err
	}
	return store.SiteInfoRow{
		Slogan:               s.Slogan,
		WhatsAppNumber:       s.WhatsAppNumber,
		CarouselImages:       carousel,
		MaterialsTitle:       s.MaterialsTitle,
		MaterialsDescription: s.MaterialsDescription,
		DesignTitle:          s.DesignTitle,
		DesignDescription:    s.DesignDescription,
		ServiceTitle:         s.ServiceTitle,
		ServiceDescription:   s.ServiceDescription,
		FAQTitle:             s.FAQTitle,
	}, nil
}

func encodeImages(images []string) (json.RawMessage, error) {
	if images == nil {
		images = []string{}
	}
	return json.Marshal(images)
}
