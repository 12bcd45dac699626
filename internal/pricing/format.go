package pricing

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatSubunits переводит минимальные единицы в строку с двумя знаками ("12.34").
func FormatSubunits(v int64) string {
	return decimal.New(v, -2).StringFixed(2)
}

// FormatMeters округляет расстояние до целых метров.
func FormatMeters(m float64) string {
	return strconv.FormatInt(int64(math.Round(m)), 10)
}
