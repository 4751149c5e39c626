package apperr

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail builds a failure envelope from an application error. The detail
// argument (stack, wrapped cause) is only attached in development.
func Fail(e *Error, detail interface{}) Envelope {
	env := Envelope{Success: false, Message: e.Message}
	if e.Fields != nil {
		env.Error = e.Fields
	} else if detail != nil {
		env.Error = detail
	}
	return env
}
