package response

import "github.com/mcoot/courseroster/internal/model"

// Message is the body of a successful mutation without a payload
type Message struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OK builds a successful Message
func OK(message string) Message {
	return Message{Success: true, Message: message}
}

// StudentResult is returned by register and login.
// Student is always the credential-free view.
type StudentResult struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Student *model.PublicStudent `json:"student"`
}

// Health is the body of GET /health
type Health struct {
	Status string `json:"status"`
}
