// SPDX-License-Identifier: MIT
package transport

import (
	applog "github.com/Pierrekw/voiceinput/internal/log"
)

// LoggingTransport implements Transport by writing each result to the
// application log. It is the fallback when no network transport is
// configured.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Infof("transport: using logging transport")
	return &LoggingTransport{}
}

// Send logs the received data. It never fails.
func (lt *LoggingTransport) Send(data any) error {
	applog.Infof("transport: %+v", data)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
