// SPDX-License-Identifier: MIT
/*
Package asr wraps the streaming speech decoder behind a small interface.
The decoder is stateful: it accumulates PCM across Decode calls and emits
finalized text exactly when it detects an utterance boundary. Decode must
be called by exactly one goroutine (the recognition worker).
*/
package asr

import (
	"context"
	"errors"
)

// ErrModelLoad indicates decoder initialization failed: the model could not
// be loaded or the recognition backend is unreachable.
var ErrModelLoad = errors.New("model load error")

// Decoder is a stateful streaming speech-recognition capability.
type Decoder interface {
	// Initialize loads the model. It is a heavyweight one-time operation
	// and idempotent: a second call on an initialized decoder is a no-op.
	Initialize(ctx context.Context, modelPath string) error

	// Decode feeds one chunk of samples into the decoder's accumulation
	// state. It returns finalized text with final=true exactly when the
	// decoder signals an utterance boundary, otherwise final=false.
	// Not reentrant.
	Decode(samples []int16) (text string, final bool, err error)

	// Partial returns the current best-effort hypothesis without
	// consuming or resetting decoder state.
	Partial() (string, bool)

	// Close releases decoder resources.
	Close() error
}

// ConfidenceReporter is an optional interface for decoders that attach a
// confidence score to their most recent finalized text.
type ConfidenceReporter interface {
	Confidence() float64
}
