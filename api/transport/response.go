package transport

import "encoding/json"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Envelope wraps every JSON response. Error carries the message shown to the
// user; Meta carries field errors or the shell view that answered.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ViewMeta tags an error envelope with the view rendered instead of a page.
type ViewMeta struct {
	View   string      `json:"view"`
	Detail interface{} `json:"detail,omitempty"`
}

func NewSuccess(data interface{}) Envelope {
	return Envelope{Status: statusSuccess, Data: data}
}

// NewError builds an error envelope; meta may be nil.
func NewError(code, message string, meta interface{}) Envelope {
	return Envelope{Status: statusError, Code: code, Error: message, Meta: meta}
}

// NewViewError builds the envelope served in place of a gated page.
func NewViewError(view, code, message string, detail interface{}) Envelope {
	return NewError(code, message, ViewMeta{View: view, Detail: detail})
}

// Failed reports whether the envelope carries an error.
func (e Envelope) Failed() bool {
	return e.Status == statusError
}

// String is the compact JSON form, used when logging failed responses.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}
