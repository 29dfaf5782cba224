// SPDX-License-Identifier: MIT
// Package transport fans finalized recognition results out to subscribers.
package transport

// Transport defines a generic interface for sending processed results or
// events. Implementations must be safe for concurrent use and must never
// block the caller for long; slow consumers are dropped, not waited on.
type Transport interface {
	Send(data any) error
	Close() error
}
