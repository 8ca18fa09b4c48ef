package media

import (
	"context"

	"github.com/example/apparel-storefront/internal/domain/catalog"
	"github.com/example/apparel-storefront/internal/domain/siteinfo"
)

// ProductImages is the part of the catalog the gallery writes to.
type ProductImages interface {
	Get(id string) (catalog.Product, error)
	AppendImages(ctx context.Context, id string, urls []string) (catalog.Product, error)
}

// CarouselImages is the part of the site info the gallery writes to.
type CarouselImages interface {
	AppendCarouselImages(ctx context.Context, urls []string) (siteinfo.SiteInfo, error)
}

// Gallery uploads a batch and then records the URLs on the owning record in
// one update. The record's image list is untouched if any upload fails.
type Gallery struct {
	uploader *Uploader
	products ProductImages
	carousel CarouselImages
}

func NewGallery(uploader *Uploader, products ProductImages, carousel CarouselImages) *Gallery {
	return &Gallery{uploader: uploader, products: products, carousel: carousel}
}

func (g *Gallery) AppendProductImages(ctx context.Context, productID string, files []File) (catalog.Product, error) {
	if _, err := g.products.Get(productID); err != nil {
		return catalog.Product{}, err
	}
	urls, err := g.uploader.UploadBatch(ctx, "product-", files)
	if err != nil {
		return catalog.Product{}, err
	}
	return g.products.AppendImages(ctx, productID, urls)
}

func (g *Gallery) AppendCarouselImages(ctx context.Context, files []File) (siteinfo.SiteInfo, error) {
	urls, err := g.uploader.UploadBatch(ctx, "carousel-", files)
	if err != nil {
		return siteinfo.SiteInfo{}, err
	}
	return g.carousel.AppendCarouselImages(ctx, urls)
}
