package errors

// ErrorResponse is the body written by the error middleware for every failed request
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the display message (from hints), the machine readable
// code of the matched sentinel and any reportable details
type ErrorDetail struct {
	Code    string         `json:"code,omitempty"`
	Display string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CodeFromErr returns the code of the first sentinel the error is marked with
func CodeFromErr(err error) string {
	for e := range statusCodeMap {
		if Is(err, e) {
			if ie, ok := e.(*InternalError); ok {
				return ie.Code
			}
		}
	}
	return ErrCodeSystemError
}
