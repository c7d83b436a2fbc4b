package kernel

import (
	"github.com/sureSundar/STEPPPS-sub015/kernel/kfmt"
)

var (
	// haltFn is installed by the machine assembly code at boot and is
	// mocked by tests.
	haltFn = func() {}

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// OnPanicHalt registers the routine Panic invokes to stop the machine after
// reporting an unrecoverable error.
func OnPanicHalt(fn func()) {
	haltFn = fn
}

// Panic outputs the supplied error (if not nil) to the console and halts the
// machine. There is no recovery path; the system stays down until reset.
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	}

	kfmt.Printf("\n-----------------------------------\n")
	if err != nil {
		kfmt.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	}
	kfmt.Printf("*** kernel panic: system halted ***")
	kfmt.Printf("\n-----------------------------------\n")

	haltFn()
}
