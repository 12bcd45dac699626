package models

import (
	"time"

	"delivery-pricing/internal/pricing"
)

// VenueStaticResponse ответ эндпоинта /venues/{slug}/static
type VenueStaticResponse struct {
	VenueRaw *struct {
		Location *struct {
			// Порядок GeoJSON: [longitude, latitude]
			Coordinates []float64 `json:"coordinates"`
		} `json:"location"`
	} `json:"venue_raw"`
}

// VenueDynamicResponse ответ эндпоинта /venues/{slug}/dynamic
type VenueDynamicResponse struct {
	VenueRaw *struct {
		DeliverySpecs *DeliverySpecs `json:"delivery_specs"`
	} `json:"venue_raw"`
}

// DeliverySpecs условия доставки заведения
type DeliverySpecs struct {
	OrderMinimumNoSurcharge int64            `json:"order_minimum_no_surcharge"`
	DeliveryPricing         *DeliveryPricing `json:"delivery_pricing"`
}

// DeliveryPricing тарифы доставки
type DeliveryPricing struct {
	BasePrice      int64                   `json:"base_price"`
	DistanceRanges []pricing.DistanceRange `json:"distance_ranges"`
}

// VenueStatic статические данные заведения
type VenueStatic struct {
	Location pricing.Coordinate `json:"location"`
}

// VenueDynamic динамические данные заведения
type VenueDynamic struct {
	Pricing pricing.VenuePricing `json:"pricing"`
}

// Venue объединённые данные заведения (кешируются в Redis)
type Venue struct {
	Slug      string               `json:"slug"`
	Location  pricing.Coordinate   `json:"location"`
	Pricing   pricing.VenuePricing `json:"pricing"`
	FetchedAt time.Time            `json:"fetched_at"`
}

// Engine возвращает данные в виде, нужном для расчёта
func (v *Venue) Engine() pricing.Venue {
	return pricing.Venue{Location: v.Location, Pricing: v.Pricing}
}
