package gtlib

import (
	"log"
	"runtime/debug"
)

// Protect invokes fn inline and recovers a panic so one crashing worker
// cannot take down the daemon. Panics are logged with a stack trace when
// l is non-nil.
func Protect(l *log.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil && l != nil {
			l.Printf("panic in %s: %v\n%s", name, r, debug.Stack())
		}
	}()
	fn()
}

// SafeGo runs fn on a new goroutine under Protect.
func SafeGo(l *log.Logger, name string, fn func()) {
	go Protect(l, name, fn)
}
