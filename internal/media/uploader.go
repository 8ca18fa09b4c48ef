// Package media uploads product and carousel images to the object store.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/apparel-storefront/internal/infrastructure/objectstore"
)

const CacheControl = "max-age=3600"

var (
	ErrNoFiles      = errors.New("no files to upload")
	ErrUploadFailed = errors.New("image upload failed")
)

// File is one uploaded image as received from the client.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ObjectName is prefix + unix millis + lowercased original extension.
func ObjectName(prefix, original string, at time.Time) string {
	return prefix + strconv.FormatInt(at.UnixMilli(), 10) + strings.ToLower(filepath.Ext(original))
}

type Uploader struct {
	bucket objectstore.Bucket
	folder string
	logger *slog.Logger
	now    func() time.Time
}

func NewUploader(bucket objectstore.Bucket, folder string, logger *slog.Logger) *Uploader {
	return &Uploader{
		bucket: bucket,
		folder: strings.Trim(folder, "/"),
		logger: logger,
		now:    time.Now,
	}
}

// Upload stores one optimized image and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, prefix string, f File) (string, error) {
	return u.upload(ctx, ObjectName(prefix, f.Name, u.now()), f)
}

// UploadBatch uploads every file concurrently and waits for all of them.
// If any upload fails no URLs are returned. Each file gets its index in the
// object name so that uploads in the same millisecond do not collide.
func (u *Uploader) UploadBatch(ctx context.Context, prefix string, files []File) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	at := u.now()
	urls := make([]string, len(files))
	var g errgroup.Group
	for i, f := range files {
		name := ObjectName(prefix+strconv.Itoa(i)+"-", f.Name, at)
		g.Go(func() error {
			url, err := u.upload(ctx, name, f)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

func (u *Uploader) upload(ctx context.Context, name string, f File) (string, error) {
	objectPath := u.objectPath(name)
	err := u.bucket.Upload(ctx, objectstore.Object{
		Path:         objectPath,
		ContentType:  ContentType(f.ContentType, f.Name),
		CacheControl: CacheControl,
		Body:         Optimize(f.Data, f.Name),
		Overwrite:    true,
	})
	if err != nil {
		u.logger.Error("upload image", "path", objectPath, "error", err)
		return "", fmt.Errorf("%w: %s: %w", ErrUploadFailed, objectPath, err)
	}
	u.logger.Info("image uploaded", "path", objectPath, "bytes", len(f.Data))
	return u.bucket.PublicURL(objectPath), nil
}

// List returns the stored objects under prefix inside the images folder.
func (u *Uploader) List(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	objects, err := u.bucket.List(ctx, u.objectPath(prefix))
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return objects, nil
}

func (u *Uploader) objectPath(name string) string {
	if u.folder == "" {
		return name
	}
	if name == "" {
		return u.folder + "/"
	}
	return path.Join(u.folder, name)
}
