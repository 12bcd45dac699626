package pricing

import "math"

// EarthRadiusMeters радиус сферы для формулы гаверсинусов.
const EarthRadiusMeters = 6371000.0

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance возвращает расстояние между точками в метрах по формуле гаверсинусов.
// Диапазоны широты и долготы не проверяются.
func Distance(p1, p2 Coordinate) float64 {
	dLat := toRadians(p2.Latitude - p1.Latitude)
	dLon := toRadians(p2.Longitude - p1.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(p1.Latitude))*math.Cos(toRadians(p2.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
