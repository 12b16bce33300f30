package order

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "online"
	PaymentCOD    PaymentMethod = "cod"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCard   PaymentMethod = "card"
)

type PaymentOption struct {
	ID   PaymentMethod `json:"id"`
	Name string        `json:"name"`
}

var PaymentMethods = []PaymentOption{
	{ID: PaymentOnline, Name: "Online Payment"},
	{ID: PaymentCOD, Name: "Cash on Delivery"},
	{ID: PaymentUPI, Name: "UPI Payment"},
	{ID: PaymentCard, Name: "Card Payment"},
}

func (m PaymentMethod) Valid() bool {
	for _, p := range PaymentMethods {
		if p.ID == m {
			return true
		}
	}
	return false
}
