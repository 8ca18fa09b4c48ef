// Package revalidation refreshes an instance's in-memory catalog and site
// copy when another instance announces a change on the change topic.
package revalidation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/example/apparel-storefront/internal/events"
)

type Catalog interface {
	Revalidate(ctx context.Context) error
}

type SiteInfo interface {
	Reload(ctx context.Context) error
}

type Handler struct {
	catalog Catalog
	site    SiteInfo
	source  string
	logger  *slog.Logger
}

// NewHandler returns a handler that ignores events published by source, the
// instance's own id.
func NewHandler(catalog Catalog, site SiteInfo, source string, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, site: site, source: source, logger: logger}
}

// HandleEvent matches kafka.MessageHandler.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var evt events.Event
	if err := json.Unmarshal(value, &evt); err != nil {
		return fmt.Errorf("decode change event: %w", err)
	}
	if evt.Source == h.source {
		return nil
	}

	h.logger.Info("change received", "type", evt.Type, "key", evt.Key, "source", evt.Source)

	switch evt.Type {
	case events.ProductCreated, events.ProductUpdated, events.ProductDeleted:
		if err := h.catalog.Revalidate(ctx); err != nil {
			return fmt.Errorf("revalidate catalog: %w", err)
		}
	case events.SiteInfoUpdated:
		if err := h.site.Reload(ctx); err != nil {
			return fmt.Errorf("reload site info: %w", err)
		}
	default:
		h.logger.Debug("ignoring change", "type", evt.Type)
	}
	return nil
}
