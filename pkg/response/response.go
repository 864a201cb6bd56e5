package response

// ErrorBody is the envelope for every non-2xx response.
type ErrorBody struct {
	Success bool       `json:"success"`
	Error   ErrorField `json:"error"`
}

type ErrorField struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Error(code, message string, details any) ErrorBody {
	return ErrorBody{
		Success: false,
		Error: ErrorField{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
