package dto

// Response represents the standard error envelope
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Details []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request ID
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.RequestID = requestID
	return resp
}

// NewValidationErrorResponse creates a validation error response with field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    ErrCodeValidation,
			Message: message,
			Details: details,
		},
		RequestID: requestID,
	}
}

// ListQuery holds the paging parameters of a record listing.
// A zero Limit returns every record from Offset on.
type ListQuery struct {
	Offset int `form:"offset" binding:"min=0"`
	Limit  int `form:"limit" binding:"min=0,max=1000"`
}

// Window returns the [start, end) bounds of the query applied to n items
func (q ListQuery) Window(n int) (int, int) {
	start := q.Offset
	if start > n {
		start = n
	}
	end := n
	if q.Limit > 0 && start+q.Limit < n {
		end = start + q.Limit
	}
	return start, end
}

// SubmitResponse acknowledges an accepted record
type SubmitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ExportResponse reports the outcome of an export run
type ExportResponse struct {
	Message string   `json:"message"`
	Modules []string `json:"modulos"`
	Failed  []string `json:"falhas"`
}

// ReportResponse returns a generated report and its artifact name
type ReportResponse struct {
	Message string `json:"message"`
	File    string `json:"arquivo"`
	Report  any    `json:"relatorio"`
}

// StatusResponse describes the running service
type StatusResponse struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Modules   []string `json:"modules"`
}

// UnauthorizedResponse is the body returned for a missing or wrong API key
type UnauthorizedResponse struct {
	Error string `json:"error"`
}
