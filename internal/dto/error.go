package dto

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
