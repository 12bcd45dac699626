package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"delivery-pricing/internal/apperror"
	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/models"
	"delivery-pricing/internal/pricing"

	"github.com/cenkalti/backoff/v4"
)

// ErrMalformedVenueData ответ внешнего API не содержит обязательных полей
var ErrMalformedVenueData = errors.New("malformed venue data")

// VenueSource источник статических и динамических данных заведения
type VenueSource interface {
	Static(ctx context.Context, slug string) (*models.VenueStatic, error)
	Dynamic(ctx context.Context, slug string) (*models.VenueDynamic, error)
}

// VenueAPIClient получает данные заведения из Home Assignment API
type VenueAPIClient struct {
	baseURL         string
	client          *http.Client
	log             *logger.Logger
	retryInitial    time.Duration
	retryMaxElapsed time.Duration
}

// NewVenueAPIClient создает клиент внешнего API заведений
func NewVenueAPIClient(cfg *config.VenueAPIConfig, log *logger.Logger) *VenueAPIClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	initial := time.Duration(cfg.RetryInitialInterval) * time.Millisecond
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	// MaxElapsedTime == 0 в backoff означает бесконечные повторы
	maxElapsed := time.Duration(cfg.RetryMaxElapsedMs) * time.Millisecond
	if maxElapsed <= 0 {
		maxElapsed = 3 * time.Second
	}
	return &VenueAPIClient{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		client:          &http.Client{Timeout: timeout},
		log:             log,
		retryInitial:    initial,
		retryMaxElapsed: maxElapsed,
	}
}

// Static возвращает координаты заведения
func (c *VenueAPIClient) Static(ctx context.Context, slug string) (*models.VenueStatic, error) {
	var resp models.VenueStaticResponse
	if err := c.fetch(ctx, slug, "static", &resp); err != nil {
		return nil, err
	}

	if resp.VenueRaw == nil || resp.VenueRaw.Location == nil || len(resp.VenueRaw.Location.Coordinates) < 2 {
		return nil, apperror.Upstream("venue location data is incomplete", ErrMalformedVenueData)
	}

	coords := resp.VenueRaw.Location.Coordinates
	return &models.VenueStatic{
		// долгота идёт первой
		Location: pricing.Coordinate{Latitude: coords[1], Longitude: coords[0]},
	}, nil
}

// Dynamic возвращает тарифы доставки заведения
func (c *VenueAPIClient) Dynamic(ctx context.Context, slug string) (*models.VenueDynamic, error) {
	var resp models.VenueDynamicResponse
	if err := c.fetch(ctx, slug, "dynamic", &resp); err != nil {
		return nil, err
	}

	if resp.VenueRaw == nil || resp.VenueRaw.DeliverySpecs == nil || resp.VenueRaw.DeliverySpecs.DeliveryPricing == nil {
		return nil, apperror.Upstream("venue pricing data is incomplete", ErrMalformedVenueData)
	}

	specs := resp.VenueRaw.DeliverySpecs
	return &models.VenueDynamic{
		Pricing: pricing.VenuePricing{
			BasePrice:               specs.DeliveryPricing.BasePrice,
			OrderMinimumNoSurcharge: specs.OrderMinimumNoSurcharge,
			DistanceRanges:          specs.DeliveryPricing.DistanceRanges,
		},
	}, nil
}

// fetch выполняет GET с повторами: 5xx, 429 и сетевые ошибки повторяются, прочие 4xx нет.
func (c *VenueAPIClient) fetch(ctx context.Context, slug, kind string, dest interface{}) error {
	endpoint := fmt.Sprintf("%s/home-assignment-api/v1/venues/%s/%s", c.baseURL, url.PathEscape(slug), kind)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("failed to call venue api: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(apperror.NotFound(fmt.Sprintf("venue %q not found", slug), nil))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("venue api %s returned status %d: %s", kind, resp.StatusCode, string(body))
		default:
			return backoff.Permanent(apperror.Upstream(
				fmt.Sprintf("venue api %s returned status %d", kind, resp.StatusCode), nil))
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return backoff.Permanent(apperror.Upstream("venue data is malformed", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInitial
	policy.MaxElapsedTime = c.retryMaxElapsed

	err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), func(err error, next time.Duration) {
		c.log.WithError(err).WithFields(map[string]interface{}{
			"venue":      slug,
			"kind":       kind,
			"next_retry": next.String(),
		}).Warn("Venue API request failed, retrying")
	})
	if err == nil {
		return nil
	}
	if apperror.KindOf(err) != "" {
		return err
	}
	return apperror.Upstream("venue api is unavailable", err)
}
