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
	"unsafe"
)

// Molecule is an owned handle to a native Indigo molecule or query
// molecule object. Callers must hand it to a resource.Tracker for
// release; Molecule itself does not auto-close.
type Molecule struct {
	handle int
	closed bool
}

// Handle returns the underlying Indigo object handle.
func (m *Molecule) Handle() int { return m.handle }

// Release frees the native object. It satisfies resource.Releasable so a
// *Molecule can be registered with the tracker without any reflection.
func (m *Molecule) Release() error {
	if m == nil || m.closed {
		return nil
	}
	m.closed = true
	if int(C.indigoFree(C.int(m.handle))) < 0 {
		return newError(KindToolkit, "Release")
	}
	return nil
}

// ParseSMILES parses a SMILES string into a molecule handle. When sanitize
// is false, the shared session's "treat-x-as-pseudoatom" option is set to
// false before the load and is not restored afterwards; that is the only
// difference between the two settings. Both load through the same
// indigoLoadMoleculeFromString call, so sanitize=false does not switch
// off any valence or aromaticity handling of the load.
func ParseSMILES(text string, sanitize bool) (*Molecule, error) {
	if err := Activate(); err != nil {
		return nil, err
	}
	setSession()

	if !sanitize {
		opt := C.CString("treat-x-as-pseudoatom")
		C.indigoSetOptionBool(opt, 0)
		C.free(unsafe.Pointer(opt))
	}

	cs := C.CString(text)
	defer C.free(unsafe.Pointer(cs))

	handle := int(C.indigoLoadMoleculeFromString(cs))
	if handle < 0 {
		return nil, newLoadError("ParseSMILES")
	}
	return &Molecule{handle: handle}, nil
}

// ParseMolblock parses a single MDL molfile block (as produced by the sdf
// package) into a molecule handle.
func ParseMolblock(text string) (*Molecule, error) {
	if err := Activate(); err != nil {
		return nil, err
	}
	setSession()

	cs := C.CString(text)
	defer C.free(unsafe.Pointer(cs))

	handle := int(C.indigoLoadMoleculeFromString(cs))
	if handle < 0 {
		return nil, newLoadError("ParseMolblock")
	}
	return &Molecule{handle: handle}, nil
}

// ParseSmarts parses a SMARTS query pattern into a query-molecule handle.
func ParseSmarts(text string) (*Molecule, error) {
	if err := Activate(); err != nil {
		return nil, err
	}
	setSession()

	cs := C.CString(text)
	defer C.free(unsafe.Pointer(cs))

	handle := int(C.indigoLoadSmartsFromString(cs))
	if handle < 0 {
		return nil, newLoadError("ParseSmarts")
	}
	return &Molecule{handle: handle}, nil
}

// ToCanonicalSmiles renders the canonicalization-normalized SMILES of the
// molecule. Equality of this string across two molecules is the
// definition of "same molecule" used by exact-match search.
func (m *Molecule) ToCanonicalSmiles() (string, error) {
	if m.closed {
		return "", fmt.Errorf("core: molecule is closed")
	}
	setSession()

	cStr := C.indigoCanonicalSmiles(C.int(m.handle))
	if cStr == nil {
		return "", newError(KindToolkit, "ToCanonicalSmiles")
	}
	return C.GoString(cStr), nil
}

// ToBinary serializes the molecule to Indigo's stable CMF binary format.
func (m *Molecule) ToBinary() ([]byte, error) {
	if m.closed {
		return nil, fmt.Errorf("core: molecule is closed")
	}
	setSession()

	var buf *C.char
	var size C.int
	if int(C.indigoSerialize(C.int(m.handle), (**C.byte)(unsafe.Pointer(&buf)), &size)) < 0 {
		return nil, newError(KindToolkit, "ToBinary")
	}
	return C.GoBytes(unsafe.Pointer(buf), size), nil
}

// FromBinary deserializes a molecule previously produced by ToBinary.
func FromBinary(data []byte) (*Molecule, error) {
	if err := Activate(); err != nil {
		return nil, err
	}
	setSession()
	if len(data) == 0 {
		return nil, fmt.Errorf("core: empty buffer")
	}

	cbuf := C.CBytes(data)
	defer C.free(cbuf)

	handle := int(C.indigoUnserialize((*C.uchar)(cbuf), C.int(len(data))))
	if handle < 0 {
		return nil, newError(KindToolkit, "FromBinary")
	}
	return &Molecule{handle: handle}, nil
}

// UpdatePropertyCache initializes ring membership and aromaticity so that
// HasSubstructureMatch can be called on this molecule as a haystack.
func (m *Molecule) UpdatePropertyCache() error {
	if m.closed {
		return fmt.Errorf("core: molecule is closed")
	}
	setSession()
	if int(C.indigoUpdatePropertyCache(C.int(m.handle))) < 0 {
		return newError(KindToolkit, "UpdatePropertyCache")
	}
	return nil
}

// HasSubstructureMatch reports whether needle is a substructure of the
// receiver (the haystack). UpdatePropertyCache must have been called on
// the haystack beforehand.
func (m *Molecule) HasSubstructureMatch(needle *Molecule) (bool, error) {
	if m.closed || needle.closed {
		return false, fmt.Errorf("core: molecule is closed")
	}
	setSession()

	matcherHandle := int(C.indigoSubstructureMatcher(C.int(m.handle), nil))
	if matcherHandle < 0 {
		return false, newError(KindToolkit, "HasSubstructureMatch")
	}
	defer C.indigoFree(C.int(matcherHandle))

	matchHandle := int(C.indigoMatch(C.int(matcherHandle), C.int(needle.handle)))
	if matchHandle <= 0 {
		return false, nil
	}
	C.indigoFree(C.int(matchHandle))
	return true, nil
}
