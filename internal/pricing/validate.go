package pricing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"delivery-pricing/internal/apperror"

	"github.com/shopspring/decimal"
)

// Field имя поля формы, к которому относится ошибка.
type Field string

const (
	FieldVenueSlug     Field = "venue_slug"
	FieldCartValue     Field = "cart_value"
	FieldUserLatitude  Field = "user_lat"
	FieldUserLongitude Field = "user_lon"
)

// Code код ошибки валидации.
type Code string

const (
	CodeMissingVenue     Code = "MissingVenue"
	CodeMissingCartValue Code = "MissingCartValue"
	CodeInvalidCartValue Code = "InvalidCartValue"
	CodeMissingLocation  Code = "MissingLocation"
	CodeInvalidLocation  Code = "InvalidLocation"
)

const (
	MsgMissingVenue     = "Please enter a venue slug"
	MsgMissingCartValue = "Please enter a cart value"
	MsgMissingLocation  = `Please press the "Get Location" button`
	MsgNotNumerical     = "The value should be a numerical value"
)

// FieldError ошибка, привязанная к конкретному полю.
type FieldError struct {
	Field   Field  `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// ValidationError набор ошибок по полям.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return strings.Join(parts, "; ")
}

// Messages возвращает сообщения по полям для отображения рядом с вводом.
func (e *ValidationError) Messages() map[Field]string {
	out := make(map[Field]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// ValidationResult результат проверки входных данных.
type ValidationResult struct {
	Errors []FieldError
}

// Valid сообщает, что ошибок нет.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Has проверяет наличие ошибки с кодом для поля.
func (r ValidationResult) Has(field Field, code Code) bool {
	for _, e := range r.Errors {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

// Err возвращает apperror вида validation или nil.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	fields := make([]FieldError, len(r.Errors))
	copy(fields, r.Errors)
	return apperror.Validation("invalid price request", &ValidationError{Fields: fields})
}

// Validate проверяет все правила независимо и возвращает все ошибки сразу.
// Ноль в сумме корзины и пара координат (0,0) считаются незаполненными значениями.
func Validate(in Input) ValidationResult {
	var res ValidationResult

	if in.VenueSlug == "" {
		res.Errors = append(res.Errors, FieldError{Field: FieldVenueSlug, Code: CodeMissingVenue, Message: MsgMissingVenue})
	}

	switch {
	case in.CartValue == nil || in.CartValue.IsZero():
		res.Errors = append(res.Errors, FieldError{Field: FieldCartValue, Code: CodeMissingCartValue, Message: MsgMissingCartValue})
	case in.CartValue.IsNegative(), !cartValueRepresentable(*in.CartValue):
		res.Errors = append(res.Errors, FieldError{Field: FieldCartValue, Code: CodeInvalidCartValue, Message: MsgNotNumerical})
	}

	if locationMissing(in.UserLatitude, in.UserLongitude) {
		res.Errors = append(res.Errors,
			FieldError{Field: FieldUserLatitude, Code: CodeMissingLocation, Message: MsgMissingLocation},
			FieldError{Field: FieldUserLongitude, Code: CodeMissingLocation, Message: MsgMissingLocation},
		)
	}

	return res
}

func locationMissing(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return true
	}
	return *lat == 0 && *lon == 0
}

var (
	numericalPattern  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	coordinatePattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// ParseCartValue разбирает сумму корзины в целых единицах валюты ("12.34").
func ParseCartValue(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !numericalPattern.MatchString(s) {
		return decimal.Zero, fieldErr(FieldCartValue, CodeInvalidCartValue)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !cartValueRepresentable(d) {
		return decimal.Zero, fieldErr(FieldCartValue, CodeInvalidCartValue)
	}
	return d, nil
}

// MaxCartValue верхняя граница суммы корзины в целых единицах валюты.
var MaxCartValue = decimal.New(1, 12)

// cartValueRepresentable: не больше двух знаков после точки и не выше MaxCartValue,
// иначе перевод в минимальные единицы теряет точность или переполняет int64.
func cartValueRepresentable(d decimal.Decimal) bool {
	sub := d.Shift(2)
	return sub.Equal(sub.Truncate(0)) && d.LessThanOrEqual(MaxCartValue)
}

// ParseCoordinate разбирает широту или долготу.
func ParseCoordinate(field Field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !coordinatePattern.MatchString(s) {
		return 0, fieldErr(field, CodeInvalidLocation)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fieldErr(field, CodeInvalidLocation)
	}
	return v, nil
}

func fieldErr(field Field, code Code) error {
	return ValidationResult{Errors: []FieldError{{Field: field, Code: code, Message: MsgNotNumerical}}}.Err()
}

// CartSubunits переводит сумму в целых единицах в минимальные единицы (×100).
func CartSubunits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
