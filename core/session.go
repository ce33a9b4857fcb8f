package core

/*
#cgo CFLAGS: -I${SRCDIR}/../3rd

// Windows: link against import libraries (.lib)
#cgo windows,amd64 LDFLAGS: -L${SRCDIR}/../3rd/windows-x86_64 -lindigo
#cgo windows,386 LDFLAGS: -L${SRCDIR}/../3rd/windows-i386 -lindigo

// Linux: embed the bundled library directory as the runtime search path
#cgo linux,amd64 LDFLAGS: -L${SRCDIR}/../3rd/linux-x86_64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/linux-x86_64
#cgo linux,arm64 LDFLAGS: -L${SRCDIR}/../3rd/linux-aarch64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/linux-aarch64

// macOS: embed the bundled library directory as the runtime search path
#cgo darwin,amd64 LDFLAGS: -L${SRCDIR}/../3rd/darwin-x86_64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/darwin-x86_64
#cgo darwin,arm64 LDFLAGS: -L${SRCDIR}/../3rd/darwin-aarch64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/darwin-aarch64
#include <stdlib.h>
#include "indigo.h"
*/
import "C"
import (
	"fmt"
	"sync"
)

var (
	activateOnce sync.Once
	activateErr  error
	sessionID    C.qword

	// avalonMu serializes every Avalon fingerprint call, per spec
	// (generic fingerprint kinds are exempt and may run concurrently).
	avalonMu sync.Mutex
)

// Activate initializes the Indigo session for the process. It is one-shot
// and idempotent: once it fails, every later call returns the same error
// without retrying the native call.
func Activate() error {
	activateOnce.Do(func() {
		sid := C.indigoAllocSessionId()
		if sid == 0 {
			activateErr = fmt.Errorf("core: failed to activate indigo session: %s", lastErrorString())
			return
		}
		sessionID = sid
		C.indigoSetSessionId(sid)
	})
	return activateErr
}

// setSession pins the process-wide session id for the calling goroutine's
// next native call. Indigo sessions are not goroutine-local, so this is a
// best-effort mirror of the teacher's per-call setSession convention; callers
// that need true isolation should use a sessionPool (see pool.go).
func setSession() {
	C.indigoSetSessionId(sessionID)
}

func lastErrorString() string {
	ptr := C.indigoGetLastError()
	if ptr == nil {
		return ""
	}
	return C.GoString(ptr)
}
