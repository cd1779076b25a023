package error

import "net/http"

// DeliveryRejectedError is returned when the messaging provider refuses an
// outbound send (non-2xx API response).
type DeliveryRejectedError string

func (err DeliveryRejectedError) Error() string {
	return string(err)
}

func (err DeliveryRejectedError) ErrCode() string {
	return "DELIVERY_REJECTED"
}

func (err DeliveryRejectedError) StatusCode() int {
	return http.StatusBadGateway
}

// DeliveryTimeoutError is returned when an outbound call exceeds its deadline.
type DeliveryTimeoutError string

func (err DeliveryTimeoutError) Error() string {
	return string(err)
}

func (err DeliveryTimeoutError) ErrCode() string {
	return "DELIVERY_TIMEOUT"
}

func (err DeliveryTimeoutError) StatusCode() int {
	return http.StatusGatewayTimeout
}
