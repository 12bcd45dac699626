package pricing

// Surcharge доплата до минимальной суммы заказа. Заказ не отклоняется, разница добавляется к цене.
func Surcharge(cartValue, orderMinimum int64) int64 {
	if cartValue >= orderMinimum {
		return 0
	}
	return orderMinimum - cartValue
}
