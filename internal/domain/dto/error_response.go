package dto

import "time"

// ErrorResponse is the standardized error body returned by every endpoint.
//
// It also implements error, so handlers can attach it with c.Error and let
// middleware.ErrorHandler render it.
type ErrorResponse struct {
	Message      string    `json:"message" example:"failed to load asset"`
	ErrorDetails string    `json:"error,omitempty" example:"market api: status 404"`
	Timestamp    time.Time `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// NewErrorResponse builds an ErrorResponse stamped with the current UTC time.
// err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
