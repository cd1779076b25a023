package error

import "net/http"

// NotFoundError marks a lookup for a resource key that is not registered,
// such as an unknown webhook key.
type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}
