// SPDX-License-Identifier: MIT
package processor

import (
	"time"

	"github.com/google/uuid"
)

// OperationResult is the return shape of the start and stop operations.
// Failure is encoded in the value; control operations never panic.
type OperationResult struct {
	Success      bool      `json:"success"`
	Text         string    `json:"text,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func okResult(text string) OperationResult {
	return OperationResult{Success: true, Text: text, Timestamp: time.Now()}
}

func failResult(msg string) OperationResult {
	return OperationResult{Success: false, ErrorMessage: msg, Timestamp: time.Now()}
}

// RecognitionResult is one finalized transcript. It is immutable once built
// and is fanned out unchanged to every registered callback and to the
// configured transport.
type RecognitionResult struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
