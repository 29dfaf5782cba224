// SPDX-License-Identifier: MIT
package processor

import "sync/atomic"

// gate is the pause signal. While closed, workers sleep and re-check
// instead of producing or consuming chunks; the worker goroutines stay
// alive. Written only by the control API, polled at the top of every
// worker iteration.
type gate struct {
	open atomic.Bool
}

func (g *gate) Open()  { g.open.Store(true) }
func (g *gate) Close() { g.open.Store(false) }

func (g *gate) IsOpen() bool { return g.open.Load() }

// flag is the stop signal. Once set, every worker exits at its next
// iteration boundary. Written only by the control API.
type flag struct {
	set atomic.Bool
}

func (f *flag) Set()        { f.set.Store(true) }
func (f *flag) Clear()      { f.set.Store(false) }
func (f *flag) IsSet() bool { return f.set.Load() }
