package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"delivery-pricing/internal/apperror"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/pricing"
)

// PriceHandler обрабатывает запросы расчёта стоимости доставки
type PriceHandler struct {
	quoter PriceQuoter
	log    *logger.Logger
}

// NewPriceHandler создает новый обработчик расчёта
func NewPriceHandler(quoter PriceQuoter, log *logger.Logger) *PriceHandler {
	return &PriceHandler{
		quoter: quoter,
		log:    log,
	}
}

// GetDeliveryOrderPrice обрабатывает GET /api/v1/delivery-order-price
// Параметры: venue_slug, cart_value (в единицах валюты), user_lat, user_lon.
func (h *PriceHandler) GetDeliveryOrderPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	in, err := parsePriceQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to parse request")
		return
	}

	quote, err := h.quoter.Quote(r.Context(), in)
	if err != nil {
		if apperror.Is(err, apperror.KindOutOfRange) {
			resp := models.NewPriceResponse(pricing.PriceBreakdown{})
			resp.Error = &models.PriceErrorBody{
				Kind:    string(apperror.KindOutOfRange),
				Message: err.Error(),
			}
			writeJSONResponse(w, http.StatusUnprocessableEntity, resp)
			return
		}
		writeServiceError(w, h.log, err, "Failed to calculate delivery price")
		return
	}

	resp := models.NewPriceResponse(quote.Breakdown)
	resp.QuoteID = &quote.ID

	h.log.WithFields(map[string]interface{}{
		"quote_id":    quote.ID,
		"venue":       quote.VenueSlug,
		"total_price": quote.Breakdown.TotalPrice,
	}).Info("Delivery price calculated")

	writeJSONResponse(w, http.StatusOK, resp)
}

// parsePriceQuery собирает pricing.Input из query. Ошибки разбора и
// ошибки правил возвращаются вместе; для поля с ошибкой разбора она заменяет ошибку правила.
func parsePriceQuery(q url.Values) (pricing.Input, error) {
	in := pricing.Input{VenueSlug: q.Get(string(pricing.FieldVenueSlug))}
	var parseErrs []pricing.FieldError

	collect := func(err error) {
		var verr *pricing.ValidationError
		if errors.As(err, &verr) {
			parseErrs = append(parseErrs, verr.Fields...)
		}
	}

	if raw := q.Get(string(pricing.FieldCartValue)); raw != "" {
		if d, err := pricing.ParseCartValue(raw); err != nil {
			collect(err)
		} else {
			in.CartValue = &d
		}
	}

	for _, field := range []pricing.Field{pricing.FieldUserLatitude, pricing.FieldUserLongitude} {
		raw := q.Get(string(field))
		if raw == "" {
			continue
		}
		v, err := pricing.ParseCoordinate(field, raw)
		if err != nil {
			collect(err)
			continue
		}
		if field == pricing.FieldUserLatitude {
			in.UserLatitude = &v
		} else {
			in.UserLongitude = &v
		}
	}

	if len(parseErrs) == 0 {
		return in, nil
	}

	failed := make(map[pricing.Field]bool, len(parseErrs))
	for _, fe := range parseErrs {
		failed[fe.Field] = true
	}
	res := pricing.ValidationResult{Errors: parseErrs}
	for _, fe := range pricing.Validate(in).Errors {
		if !failed[fe.Field] {
			res.Errors = append(res.Errors, fe)
		}
	}
	return in, res.Err()
}
