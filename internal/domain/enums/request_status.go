package enums

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Resolved() bool {
	return s == RequestAccepted || s == RequestRejected
}

func (s RequestStatus) String() string {
	return string(s)
}
