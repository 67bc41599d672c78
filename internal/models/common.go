package models

// ErrorResponse is the JSON body for every non-2xx REST response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is the JSON body for acknowledgment-only responses.
type MessageResponse struct {
	Message string `json:"message"`
}
