package pricing

import "math"

// distanceUnitMeters коэффициент B внешнего API задан за каждые 10 метров.
const distanceUnitMeters = 10

// DeliveryFee стоимость доставки в минимальных единицах без округления.
func DeliveryFee(basePrice int64, c Coefficients, distance float64) float64 {
	return float64(basePrice) + c.A + (c.B*distance)/distanceUnitMeters
}

// Assemble собирает итоговый расчёт. Округление до целых единиц только на выходе.
func Assemble(cartValue, basePrice int64, c Coefficients, distance float64, surcharge int64) PriceBreakdown {
	fee := DeliveryFee(basePrice, c, distance)
	total := float64(cartValue) + fee + float64(surcharge)

	return PriceBreakdown{
		CartValue:           cartValue,
		DeliveryFee:         int64(math.Round(fee)),
		DeliveryDistance:    distance,
		SmallOrderSurcharge: surcharge,
		TotalPrice:          int64(math.Round(total)),
	}
}
