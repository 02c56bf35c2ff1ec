package bookfetch

import "sync/atomic"

// prewarmed tracks whether the native decryption runtime has been primed in
// this process. Priming is optional; the flag only lets the engine skip a
// redundant warm-up on later runs.
var prewarmed atomic.Bool

// SetPrewarmed marks the native runtime as primed for this process.
func SetPrewarmed(v bool) {
	prewarmed.Store(v)
}

// Prewarmed reports whether the native runtime was primed in this process.
func Prewarmed() bool {
	return prewarmed.Load()
}
