package chemindex

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Listener is notified after every successfully ingested document
// (spec.md §4.6 "Ingestion Events"). Notifications carry only primitive
// values — no back-reference to the facade or the record — per the
// design note in spec.md §9 ("Listener graph ... avoids back references
// by passing only primitive values").
type Listener func(pk, canonicalSmiles string)

type registeredListener struct {
	token string
	fn    Listener
}

// AddListener registers l and returns a token that can later be passed
// to RemoveListener. Listener registration is a simple ordered
// collection (spec.md §9), not a pub/sub graph: notifications run in
// registration order.
func (f *Facade) AddListener(l Listener) string {
	token := uuid.NewString()
	f.listenersMu.Lock()
	f.listeners = append(f.listeners, registeredListener{token: token, fn: l})
	f.listenersMu.Unlock()
	return token
}

// RemoveListener unregisters the listener previously returned by
// AddListener. Removing an unknown token is a no-op.
func (f *Facade) RemoveListener(token string) {
	f.listenersMu.Lock()
	defer f.listenersMu.Unlock()
	for i, rl := range f.listeners {
		if rl.token == token {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			return
		}
	}
}

// notifyListeners calls every registered listener synchronously, in
// registration order, on the ingest thread. A panicking listener is
// recovered and logged; it never aborts ingest (spec.md §7: "the facade
// catches exceptions from listener callbacks and logs them").
func (f *Facade) notifyListeners(pk, canonicalSmiles string) {
	f.listenersMu.Lock()
	listeners := make([]registeredListener, len(f.listeners))
	copy(listeners, f.listeners)
	f.listenersMu.Unlock()

	for _, rl := range listeners {
		f.safeNotify(rl, pk, canonicalSmiles)
	}
}

func (f *Facade) safeNotify(rl registeredListener, pk, canonicalSmiles string) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("ingestion listener panicked",
				zap.String("token", rl.token), zap.Any("panic", r))
		}
	}()
	rl.fn(pk, canonicalSmiles)
}
