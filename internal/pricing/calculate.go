package pricing

import (
	"errors"

	"delivery-pricing/internal/apperror"
)

// MsgOutOfRange общее сообщение, когда расстояние не попало ни в один диапазон.
const MsgOutOfRange = "Error: Distance out of reach. Delivery price cannot be calculated."

var (
	// ErrOutOfRange расстояние не попало ни в один диапазон таблицы.
	ErrOutOfRange = errors.New("distance out of range")
	// ErrNoDistanceRanges у заведения пустая таблица тарифов.
	ErrNoDistanceRanges = errors.New("venue has no distance ranges")
	// ErrNegativePricing отрицательная базовая цена или минимальная сумма заказа.
	ErrNegativePricing = errors.New("venue pricing has negative amounts")
)

// Check проверяет данные заведения, пришедшие от внешнего источника.
func (v Venue) Check() error {
	if len(v.Pricing.DistanceRanges) == 0 {
		return apperror.Upstream("venue pricing data is incomplete", ErrNoDistanceRanges)
	}
	if v.Pricing.BasePrice < 0 || v.Pricing.OrderMinimumNoSurcharge < 0 {
		return apperror.Upstream("venue pricing data is malformed", ErrNegativePricing)
	}
	return nil
}

// Calculate выполняет полный расчёт: валидация, расстояние, диапазон, доплата, сборка.
// При любой ошибке возвращается нулевой PriceBreakdown, частичный результат не отдаётся.
func Calculate(in Input, venue Venue) (PriceBreakdown, error) {
	if err := Validate(in).Err(); err != nil {
		return PriceBreakdown{}, err
	}
	if err := venue.Check(); err != nil {
		return PriceBreakdown{}, err
	}

	distance := Distance(in.UserLocation(), venue.Location)

	coef, ok := ResolveRange(venue.Pricing.DistanceRanges, distance)
	if !ok {
		return PriceBreakdown{}, apperror.OutOfRange(MsgOutOfRange, ErrOutOfRange)
	}

	cart := CartSubunits(*in.CartValue)
	surcharge := Surcharge(cart, venue.Pricing.OrderMinimumNoSurcharge)

	return Assemble(cart, venue.Pricing.BasePrice, coef, distance, surcharge), nil
}
