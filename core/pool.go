package core

/*
#include <stdlib.h>
#include "indigo.h"
*/
import "C"
import (
	"fmt"
	"sync"
)

// sessionPool hands out distinct Indigo session ids so that fingerprint
// kinds the spec allows to run in parallel (anything but Avalon) don't
// clobber each other's session-local state. Adapted from the teacher's
// SessionPool helper, which pooled whole *Indigo handles; here the pool
// holds bare session ids since core has no per-session object of its own.
type sessionPool struct {
	ids chan C.qword
}

func newSessionPool(size int) (*sessionPool, error) {
	ids := make(chan C.qword, size)
	for i := 0; i < size; i++ {
		sid := C.indigoAllocSessionId()
		if sid == 0 {
			return nil, fmt.Errorf("core: failed to allocate session for pool: %s", lastErrorString())
		}
		ids <- sid
	}
	return &sessionPool{ids: ids}, nil
}

func (p *sessionPool) acquire() C.qword {
	sid := <-p.ids
	C.indigoSetSessionId(sid)
	return sid
}

func (p *sessionPool) release(sid C.qword) {
	select {
	case p.ids <- sid:
	default:
		C.indigoReleaseSessionId(sid)
	}
}

// genericSessionPoolSize bounds the number of distinct native sessions kept
// alive for generic (non-Avalon) fingerprint kinds.
const genericSessionPoolSize = 4

var (
	genericPoolOnce sync.Once
	genericPool     *sessionPool
	genericPoolErr  error
)

// acquireGenericSession hands out a session id from a package-lifetime
// pool. Earlier revisions allocated a fresh one-slot pool per call and
// discarded it on return without ever calling indigoReleaseSessionId on
// the id left sitting in its channel, leaking one native session per
// GenericFingerprint call. The pool now lives for the process lifetime,
// so release always returns the id to the same long-lived channel
// instead of an about-to-be-garbage-collected one.
func acquireGenericSession() (C.qword, error) {
	genericPoolOnce.Do(func() {
		genericPool, genericPoolErr = newSessionPool(genericSessionPoolSize)
	})
	if genericPoolErr != nil {
		return 0, genericPoolErr
	}
	return genericPool.acquire(), nil
}

func releaseGenericSession(sid C.qword) {
	genericPool.release(sid)
}
