package media

import (
	"context"
	"errors"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/apparel-storefront/internal/domain/catalog"
	"github.com/example/apparel-storefront/internal/domain/siteinfo"
	"github.com/example/apparel-storefront/internal/infrastructure/localstore"
	"github.com/example/apparel-storefront/internal/infrastructure/objectstore"
	"github.com/example/apparel-storefront/internal/infrastructure/store"
	"github.com/example/apparel-storefront/internal/logging"
)

var fixedNow = time.UnixMilli(1717171717000)

func newTestUploader() (*Uploader, *objectstore.MemoryBucket) {
	bucket := objectstore.NewMemoryBucket("https://cdn.test")
	u := NewUploader(bucket, "site-images", logging.Discard())
	u.now = func() time.Time { return fixedNow }
	return u, bucket
}

func threeFiles() []File {
	return []File{
		{Name: "uno.JPG", ContentType: "image/jpeg", Data: []byte("1")},
		{Name: "dos.png", Data: []byte("2")},
		{Name: "tres.jpg", Data: []byte("3")},
	}
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "carousel-1717171717000.jpg", ObjectName("carousel-", "Foto.JPG", fixedNow))
	assert.Equal(t, "1717171717000", ObjectName("", "noext", fixedNow))
}

// ============================================
// Uploader Tests
// ============================================

func TestUploader_Upload(t *testing.T) {
	u, bucket := newTestUploader()

	url, err := u.Upload(context.Background(), "product-", File{Name: "a.jpg", Data: []byte("x")})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/site-images/product-1717171717000.jpg", url)
	obj, ok := bucket.Get("site-images/product-1717171717000.jpg")
	require.True(t, ok)
	assert.Equal(t, CacheControl, obj.CacheControl)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.True(t, obj.Overwrite)
}

func TestUploader_UploadBatchKeepsOrder(t *testing.T) {
	u, _ := newTestUploader()

	urls, err := u.UploadBatch(context.Background(), "carousel-", threeFiles())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.test/site-images/carousel-0-1717171717000.jpg",
		"https://cdn.test/site-images/carousel-1-1717171717000.png",
		"https://cdn.test/site-images/carousel-2-1717171717000.jpg",
	}, urls)
}

func TestUploader_UploadBatchAllOrNothing(t *testing.T) {
	u, bucket := newTestUploader()
	bucket.FailUpload = func(obj objectstore.Object) error {
		if strings.HasPrefix(path.Base(obj.Path), "carousel-1-") {
			return errors.New("quota exceeded")
		}
		return nil
	}

	urls, err := u.UploadBatch(context.Background(), "carousel-", threeFiles())

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Nil(t, urls)
}

func TestUploader_UploadBatchEmpty(t *testing.T) {
	u, _ := newTestUploader()

	_, err := u.UploadBatch(context.Background(), "x-", nil)

	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestUploader_List(t *testing.T) {
	u, _ := newTestUploader()
	ctx := context.Background()
	_, err := u.UploadBatch(ctx, "carousel-", threeFiles())
	require.NoError(t, err)
	_, err = u.Upload(ctx, "product-", File{Name: "p.jpg", Data: []byte("p")})
	require.NoError(t, err)

	objects, err := u.List(ctx, "carousel-")

	require.NoError(t, err)
	assert.Len(t, objects, 3)
}

// ============================================
// Gallery Tests
// ============================================

func newTestGallery(t *testing.T) (*Gallery, *objectstore.MemoryBucket, *catalog.Service, *siteinfo.Synchronizer) {
	t.Helper()
	u, bucket := newTestUploader()
	products := catalog.NewService(store.NewMemory(), localstore.NewMemory(), nil, logging.Discard())
	site := siteinfo.NewSynchronizer(store.NewMemory(), nil, logging.Discard())
	require.NoError(t, site.Load(context.Background()))
	return NewGallery(u, products, site), bucket, products, site
}

func TestGallery_AppendProductImages(t *testing.T) {
	g, _, products, _ := newTestGallery(t)
	ctx := context.Background()
	p, err := products.Add(ctx, catalog.Draft{
		Title:  "Buzo",
		Price:  decimal.NewFromInt(30),
		Images: []string{"https://cdn.test/existing.jpg"},
	})
	require.NoError(t, err)

	updated, err := g.AppendProductImages(ctx, p.ID, threeFiles()[:2])

	require.NoError(t, err)
	require.Len(t, updated.Images, 3)
	assert.Equal(t, "https://cdn.test/existing.jpg", updated.ImageURL)
}

func TestGallery_AppendProductImagesUnknownProduct(t *testing.T) {
	g, bucket, _, _ := newTestGallery(t)

	_, err := g.AppendProductImages(context.Background(), "missing", threeFiles())

	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
	objects, _ := bucket.List(context.Background(), "")
	assert.Empty(t, objects)
}

func TestGallery_BatchFailureLeavesCarousel(t *testing.T) {
	g, bucket, _, site := newTestGallery(t)
	before := site.Current().CarouselImages
	bucket.FailUpload = func(obj objectstore.Object) error {
		if strings.HasPrefix(path.Base(obj.Path), "carousel-1-") {
			return errors.New("storage unavailable")
		}
		return nil
	}

	_, err := g.AppendCarouselImages(context.Background(), threeFiles())

	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, before, site.Current().CarouselImages)
}

func TestGallery_AppendCarouselImages(t *testing.T) {
	g, _, _, site := newTestGallery(t)
	before := len(site.Current().CarouselImages)

	updated, err := g.AppendCarouselImages(context.Background(), threeFiles())

	require.NoError(t, err)
	assert.Len(t, updated.CarouselImages, before+3)
	assert.Equal(t, updated.CarouselImages, site.Current().CarouselImages)
}
