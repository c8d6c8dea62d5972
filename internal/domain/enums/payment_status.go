package enums

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentApproved PaymentStatus = "APPROVED"
	PaymentRejected PaymentStatus = "REJECTED"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentApproved || s == PaymentRejected
}

func (s PaymentStatus) String() string {
	return string(s)
}
