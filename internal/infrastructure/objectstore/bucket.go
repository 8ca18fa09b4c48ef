// Package objectstore stores uploaded images in a public bucket.
package objectstore

import (
	"context"
	"errors"
	"time"
)

// ErrObjectExists is returned by Upload when Overwrite is false and the path is taken.
var ErrObjectExists = errors.New("object already exists")

// Object is a single upload.
type Object struct {
	Path         string
	ContentType  string
	CacheControl string
	Body         []byte
	Overwrite    bool
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Path         string    `json:"path"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Bucket is the object storage used for product and carousel images.
type Bucket interface {
	Upload(ctx context.Context, obj Object) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	PublicURL(path string) string
}
