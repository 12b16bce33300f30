package cart

const (
	// FreeDeliveryThreshold is the subtotal above which delivery is free.
	FreeDeliveryThreshold = 299
	FlatDeliveryFee       = 40
)

func DeliveryFee(subtotal int) int {
	if subtotal > FreeDeliveryThreshold {
		return 0
	}
	return FlatDeliveryFee
}

func Total(subtotal int) int {
	return subtotal + DeliveryFee(subtotal)
}

// AmountForFreeDelivery is how much more has to be added before delivery
// becomes free; 0 once it already is.
func AmountForFreeDelivery(subtotal int) int {
	if subtotal > FreeDeliveryThreshold {
		return 0
	}
	return FreeDeliveryThreshold + 1 - subtotal
}
