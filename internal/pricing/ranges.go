package pricing

// ResolveRange ищет первый подходящий диапазон в порядке таблицы.
// При пересечении диапазонов побеждает более ранний.
// false означает, что доставка на это расстояние недоступна.
func ResolveRange(ranges []DistanceRange, distance float64) (Coefficients, bool) {
	for _, r := range ranges {
		if r.Contains(distance) {
			return Coefficients{A: r.A, B: r.B}, true
		}
	}
	return Coefficients{}, false
}
