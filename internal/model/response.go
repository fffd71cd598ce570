package model

// SuccessResponse is the envelope for every successful JSON response.
type SuccessResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope for every failed JSON response. Errors is
// only populated for validation and conflict classes; Path and Method only
// for internal errors.
type ErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Path    string              `json:"path,omitempty"`
	Method  string              `json:"method,omitempty"`
}
