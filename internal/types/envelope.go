package types

import "encoding/json"

// Envelope is the success wrapper returned by every dashboard endpoint
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// RawEnvelope defers decoding of the data member
type RawEnvelope = Envelope[json.RawMessage]

// OK wraps data in a successful envelope
func OK[T any](data T, message string) Envelope[T] {
	return Envelope[T]{Success: true, Data: data, Message: message}
}
