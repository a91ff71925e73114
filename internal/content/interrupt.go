package content

import "sync/atomic"

// interruptFlag is the process-wide cooperative-cancellation flag described
// in the design notes: Interrupt.Set() raises it; long-running loops (ProcessThrough, ProcessToEnd, Find) poll it between iterations and
// return Aborted without rolling back already-built state. It is an
// explicit singleton (not an ambient package-level bool) so its lifecycle
// reads the same way observability's default-logger-path singleton does.
var interruptFlag atomic.Bool

// Interrupt is the process-wide cancellation signal.
//
// Set() raises the flag and Clear() lowers it. No signal handler in this
// module calls Set(), so Ctrl-C/Ctrl-Break does not raise it. Long loops in
// this package call Requested() between units of work and return Aborted
// while it is set; they leave the flag as it is, and nothing in the module
// calls Clear().
var Interrupt = interruptController{}

type interruptController struct{}

func (interruptController) Set()             { interruptFlag.Store(true) }
func (interruptController) Clear()           { interruptFlag.Store(false) }
func (interruptController) Requested() bool  { return interruptFlag.Load() }
func (interruptController) IsSet() bool      { return interruptFlag.Load() }
