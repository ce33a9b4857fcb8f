package core

/*
#cgo CFLAGS: -I${SRCDIR}/../3rd
#cgo linux,amd64 LDFLAGS: -L${SRCDIR}/../3rd/linux-x86_64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/linux-x86_64
#cgo linux,arm64 LDFLAGS: -L${SRCDIR}/../3rd/linux-aarch64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/linux-aarch64
#cgo darwin,amd64 LDFLAGS: -L${SRCDIR}/../3rd/darwin-x86_64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/darwin-x86_64
#cgo darwin,arm64 LDFLAGS: -L${SRCDIR}/../3rd/darwin-aarch64 -lindigo -Wl,-rpath,${SRCDIR}/../3rd/darwin-aarch64
#cgo windows,amd64 LDFLAGS: -L${SRCDIR}/../3rd/windows-x86_64 -lindigo
#include <stdlib.h>
#include "indigo.h"
*/
import "C"
import (
	"fmt"
	"strconv"
	"strings"
	"unsafe"
)

// AvalonFingerprint computes the Avalon fingerprint of smiles as a list of
// set bit positions in [0, width). queryFlag selects between the
// structure encoding (0) and the query encoding (1, see spec.md §3's
// screening invariant); bitFlags is the toolkit-defined bit-class mask.
//
// Every Avalon call is serialized process-wide: Indigo's Avalon routine is
// not reentrant across sessions.
func AvalonFingerprint(smiles string, width int, queryFlag int, bitFlags uint32) ([]int, error) {
	if err := Activate(); err != nil {
		return nil, err
	}

	avalonMu.Lock()
	defer avalonMu.Unlock()
	setSession()

	cs := C.CString(smiles)
	defer C.free(unsafe.Pointer(cs))

	molHandle := int(C.indigoLoadMoleculeFromString(cs))
	if molHandle < 0 {
		return nil, newLoadError("AvalonFingerprint")
	}
	defer C.indigoFree(C.int(molHandle))

	opt := C.CString(fmt.Sprintf("fp-avalon-bits:%d,fp-avalon-query:%d,fp-avalon-flags:%d", width, queryFlag, bitFlags))
	defer C.free(unsafe.Pointer(opt))
	C.indigoSetOption(C.CString("fp-params"), opt)

	cKind := C.CString("sim")
	defer C.free(unsafe.Pointer(cKind))
	fpHandle := int(C.indigoFingerprint(C.int(molHandle), cKind))
	if fpHandle < 0 {
		return nil, newError(KindToolkit, "AvalonFingerprint")
	}
	defer C.indigoFree(C.int(fpHandle))

	return oneBits(fpHandle, width)
}

// GenericFingerprint computes a non-Avalon fingerprint of an already
// parsed molecule, per settings.Kind. Unlike AvalonFingerprint, concurrent
// calls are not serialized: each acquires its own session from a
// long-lived pool shared by every GenericFingerprint call.
func GenericFingerprint(mol *Molecule, kind string, width int) ([]int, error) {
	if mol.closed {
		return nil, fmt.Errorf("core: molecule is closed")
	}
	if err := Activate(); err != nil {
		return nil, err
	}

	sid, err := acquireGenericSession()
	if err != nil {
		return nil, err
	}
	defer releaseGenericSession(sid)

	cKind := C.CString(kind)
	defer C.free(unsafe.Pointer(cKind))
	fpHandle := int(C.indigoFingerprint(C.int(mol.handle), cKind))
	if fpHandle < 0 {
		return nil, newError(KindToolkit, "GenericFingerprint")
	}
	defer C.indigoFree(C.int(fpHandle))

	return oneBits(fpHandle, width)
}

// oneBits reads the set-bit positions of a fingerprint object via
// indigoOneBitsList, which returns them as a space-separated string.
func oneBits(fpHandle int, width int) ([]int, error) {
	cStr := C.indigoOneBitsList(C.int(fpHandle))
	if cStr == nil {
		return nil, newError(KindToolkit, "oneBits")
	}
	s := strings.TrimSpace(C.GoString(cStr))
	if s == "" {
		return nil, nil
	}
	fields := strings.Fields(s)
	bits := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		if n < width {
			bits = append(bits, n)
		}
	}
	return bits, nil
}
