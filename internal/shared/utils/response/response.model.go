package response

// StandardApiResponse is the envelope every gateway endpoint returns.
// Status is "success" or "error" and always agrees with StatusCode; Data
// carries the payload on success and Errors the validation or upstream
// detail on failure, each omitted when empty.
type StandardApiResponse struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
