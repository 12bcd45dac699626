package models

import (
	"math"
	"time"

	"delivery-pricing/internal/pricing"

	"github.com/google/uuid"
)

// PriceQuote результат расчёта для конкретного заведения
type PriceQuote struct {
	ID         uuid.UUID              `json:"id"`
	VenueSlug  string                 `json:"venue_slug"`
	Breakdown  pricing.PriceBreakdown `json:"breakdown"`
	Calculated time.Time              `json:"calculated_at"`
}

// PriceResponse ответ эндпоинта /api/v1/delivery-order-price
type PriceResponse struct {
	TotalPrice          int64           `json:"total_price"`
	SmallOrderSurcharge int64           `json:"small_order_surcharge"`
	CartValue           int64           `json:"cart_value"`
	Delivery            DeliveryPart    `json:"delivery"`
	Display             PriceDisplay    `json:"display"`
	QuoteID             *uuid.UUID      `json:"quote_id,omitempty"`
	Error               *PriceErrorBody `json:"error,omitempty"`
}

// DeliveryPart стоимость и расстояние доставки
type DeliveryPart struct {
	Fee      int64 `json:"fee"`
	Distance int64 `json:"distance"`
}

// PriceDisplay значения в формате для отображения (единицы валюты, целые метры)
type PriceDisplay struct {
	CartValue           string `json:"cart_value"`
	DeliveryFee         string `json:"delivery_fee"`
	DeliveryDistance    string `json:"delivery_distance"`
	SmallOrderSurcharge string `json:"small_order_surcharge"`
	TotalPrice          string `json:"total_price"`
}

// PriceErrorBody общая ошибка расчёта (не привязанная к полю)
type PriceErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewPriceResponse строит ответ из результата расчёта
func NewPriceResponse(b pricing.PriceBreakdown) PriceResponse {
	return PriceResponse{
		TotalPrice:          b.TotalPrice,
		SmallOrderSurcharge: b.SmallOrderSurcharge,
		CartValue:           b.CartValue,
		Delivery: DeliveryPart{
			Fee:      b.DeliveryFee,
			Distance: int64(math.Round(b.DeliveryDistance)),
		},
		Display: PriceDisplay{
			CartValue:           pricing.FormatSubunits(b.CartValue),
			DeliveryFee:         pricing.FormatSubunits(b.DeliveryFee),
			DeliveryDistance:    pricing.FormatMeters(b.DeliveryDistance),
			SmallOrderSurcharge: pricing.FormatSubunits(b.SmallOrderSurcharge),
			TotalPrice:          pricing.FormatSubunits(b.TotalPrice),
		},
	}
}
