package dto

// Outcome is the success/message pair most backend replies carry. A reply
// without a success field is treated as successful.
type Outcome struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// Rejected reports the server message when the reply explicitly says success=false.
func (o Outcome) Rejected() (string, bool) {
	if o.Success != nil && !*o.Success {
		return o.Message, true
	}
	return "", false
}
