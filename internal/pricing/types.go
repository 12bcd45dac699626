// Package pricing рассчитывает стоимость заказа с доставкой: расстояние,
// тариф по диапазону расстояний, доплату за малый заказ и итоговую сумму.
// Все функции пакета чистые: без I/O, без общего состояния, без логирования.
package pricing

import "github.com/shopspring/decimal"

// Coordinate представляет точку в градусах (WGS84).
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceRange представляет один тариф из таблицы цен.
// Min включительно, Max исключительно; Max == 0 означает диапазон без верхней границы.
// A в минимальных единицах валюты, B за каждые 10 метров.
type DistanceRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	A    float64 `json:"a"`
	B    float64 `json:"b"`
	Flag *string `json:"flag"`
}

// Unbounded сообщает, что у диапазона нет верхней границы.
func (r DistanceRange) Unbounded() bool {
	return r.Max == 0
}

// Contains проверяет, попадает ли расстояние в диапазон.
func (r DistanceRange) Contains(distance float64) bool {
	return distance >= r.Min && (distance < r.Max || r.Unbounded())
}

// VenuePricing хранит тарифы заведения. Порядок DistanceRanges значим.
type VenuePricing struct {
	BasePrice               int64           `json:"base_price"`
	OrderMinimumNoSurcharge int64           `json:"order_minimum_no_surcharge"`
	DistanceRanges          []DistanceRange `json:"distance_ranges"`
}

// Venue содержит данные заведения, нужные для расчёта.
type Venue struct {
	Location Coordinate   `json:"location"`
	Pricing  VenuePricing `json:"pricing"`
}

// Coefficients пара коэффициентов найденного диапазона.
type Coefficients struct {
	A float64
	B float64
}

// PriceBreakdown результат расчёта. Денежные поля в минимальных единицах валюты.
// Нулевое значение используется как «обнулённый» результат.
type PriceBreakdown struct {
	CartValue           int64   `json:"cart_value"`
	DeliveryFee         int64   `json:"delivery_fee"`
	DeliveryDistance    float64 `json:"delivery_distance"`
	SmallOrderSurcharge int64   `json:"small_order_surcharge"`
	TotalPrice          int64   `json:"total_price"`
}

// Input входные данные одного расчёта. nil означает «значение не задано».
type Input struct {
	VenueSlug     string
	CartValue     *decimal.Decimal
	UserLatitude  *float64
	UserLongitude *float64
}

// UserLocation возвращает координаты пользователя. Вызывать после успешной валидации.
func (in Input) UserLocation() Coordinate {
	var c Coordinate
	if in.UserLatitude != nil {
		c.Latitude = *in.UserLatitude
	}
	if in.UserLongitude != nil {
		c.Longitude = *in.UserLongitude
	}
	return c
}
