package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryBucket keeps objects in memory. FailUpload, when set, is consulted
// before each upload and its error returned.
type MemoryBucket struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]storedObject

	FailUpload func(obj Object) error
}

type storedObject struct {
	Object
	at time.Time
}

func NewMemoryBucket(baseURL string) *MemoryBucket {
	return &MemoryBucket{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]storedObject),
	}
}

func (b *MemoryBucket) Upload(ctx context.Context, obj Object) error {
	if b.FailUpload != nil {
		if err := b.FailUpload(obj); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.objects[obj.Path]; ok && !obj.Overwrite {
		return fmt.Errorf("%s: %w", obj.Path, ErrObjectExists)
	}
	obj.Body = append([]byte(nil), obj.Body...)
	b.objects[obj.Path] = storedObject{Object: obj, at: time.Now()}
	return nil
}

func (b *MemoryBucket) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []ObjectInfo
	for path, o := range b.objects {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		out = append(out, ObjectInfo{
			Path:         path,
			URL:          b.PublicURL(path),
			Size:         int64(len(o.Body)),
			LastModified: o.at,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (b *MemoryBucket) PublicURL(path string) string {
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Get returns a stored object. Intended for tests.
func (b *MemoryBucket) Get(path string) (Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.objects[path]
	return o.Object, ok
}

// ServeHTTP serves stored objects by path, so the URLs from PublicURL resolve
// when the handler is mounted (with the prefix stripped) under baseURL.
func (b *MemoryBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	o, ok := b.objects[strings.TrimLeft(r.URL.Path, "/")]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if o.ContentType != "" {
		w.Header().Set("Content-Type", o.ContentType)
	}
	if o.CacheControl != "" {
		w.Header().Set("Cache-Control", o.CacheControl)
	}
	http.ServeContent(w, r, o.Path, o.at, bytes.NewReader(o.Body))
}
