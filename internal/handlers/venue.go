package handlers

import (
	"context"
	"net/http"
	"strings"

	"delivery-pricing/internal/logger"
)

const venuesPathPrefix = "/api/v1/venues/"

// VenueCache сбрасывает закешированные данные заведений
type VenueCache interface {
	Invalidate(ctx context.Context, slug string) error
}

// VenueEventPublisher рассылает событие об изменении тарифов другим репликам
type VenueEventPublisher interface {
	PublishVenuePricingUpdated(venueSlug string) error
}

// VenueHandler управляет кешем данных заведений
type VenueHandler struct {
	cache     VenueCache
	publisher VenueEventPublisher
	log       *logger.Logger
}

// NewVenueHandler создает обработчик заведений. publisher может быть nil.
func NewVenueHandler(cache VenueCache, publisher VenueEventPublisher, log *logger.Logger) *VenueHandler {
	return &VenueHandler{
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// InvalidateVenue обрабатывает POST /api/v1/venues/{slug}/invalidate
// и POST /api/v1/venues/invalidate (все заведения).
func (h *VenueHandler) InvalidateVenue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	slug, ok := venueSlugFromPath(r.URL.Path)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "Unknown venue route")
		return
	}

	if err := h.cache.Invalidate(r.Context(), slug); err != nil {
		writeServiceError(w, h.log, err, "Failed to invalidate venue cache")
		return
	}

	broadcast := false
	if h.publisher != nil {
		if err := h.publisher.PublishVenuePricingUpdated(slug); err != nil {
			h.log.WithError(err).WithField("venue", slug).Warn("Failed to publish venue pricing updated event")
		} else {
			broadcast = true
		}
	}

	writeJSONResponse(w, http.StatusAccepted, map[string]interface{}{
		"venue_slug": slug,
		"broadcast":  broadcast,
	})
}

// venueSlugFromPath возвращает slug; пустой slug означает все заведения
func venueSlugFromPath(path string) (string, bool) {
	rest := strings.TrimPrefix(path, venuesPathPrefix)
	if rest == path {
		return "", false
	}
	if rest == "invalidate" {
		return "", true
	}
	slug := strings.TrimSuffix(rest, "/invalidate")
	if slug == rest || slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}
