package handlers

import (
	"net/http"
	"strconv"
	"time"

	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/services"
)

// RateLimitHandler отдаёт состояние лимита клиента.
type RateLimitHandler struct {
	limiter RateLimitStatusProvider
	log     *logger.Logger
	cfg     *config.RateLimitConfig
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		log:     log,
		cfg:     cfg,
	}
}

// Status возвращает текущие значения лимита для клиента.
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.limiter == nil || h.cfg == nil || !h.limiter.Enabled() {
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"enabled": false,
		})
		return
	}

	client := services.ExtractClientIP(r)
	quota, err := h.limiter.Usage(r.Context(), client)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch rate limit usage")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch rate limit usage")
		return
	}

	resp := map[string]interface{}{
		"enabled":        true,
		"limit":          quota.Limit,
		"window_seconds": h.cfg.WindowSeconds,
		"used":           quota.Used,
		"remaining":      quota.Remaining,
		"key":            client,
	}
	if quota.ResetAt != nil {
		resp["reset_at"] = quota.ResetAt.Format(time.RFC3339)
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// RateLimit возвращает middleware, совместимое с alice.Chain.
func RateLimit(limiter MiddlewareLimiter, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !limiter.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			quota, err := limiter.Allow(r.Context(), services.ExtractClientIP(r))
			if err != nil {
				log.WithError(err).Error("Rate limiter failed")
				writeErrorResponse(w, http.StatusInternalServerError, "Rate limiter error")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(quota.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(quota.Remaining, 10))
			if quota.ResetAt != nil {
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(quota.ResetAt.Unix(), 10))
			}

			if !quota.Allowed {
				writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
