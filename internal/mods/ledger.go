package mods

import "sync"

// Ledger tracks the mod ids handled during one download batch.
// An id is either in flight (reserved, download running) or committed
// (downloaded successfully). Both states count as present.
type Ledger struct {
	mu       sync.Mutex
	done     map[int]struct{}
	inFlight map[int]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		done:     make(map[int]struct{}),
		inFlight: make(map[int]struct{}),
	}
}

// Contains reports whether id is downloaded or currently being downloaded.
func (l *Ledger) Contains(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.has(id)
}

// Reserve marks id as in flight. It returns false if id is already present,
// so only one caller may download a given id.
func (l *Ledger) Reserve(id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.has(id) {
		return false
	}
	l.inFlight[id] = struct{}{}
	return true
}

// Commit records a successful download of a reserved id.
func (l *Ledger) Commit(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.inFlight, id)
	l.done[id] = struct{}{}
}

// Release drops a reservation after a failed download so a later attempt may retry.
func (l *Ledger) Release(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.inFlight, id)
}

// Len returns the number of committed ids.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// must be called with lock held
func (l *Ledger) has(id int) bool {
	if _, ok := l.done[id]; ok {
		return true
	}
	_, ok := l.inFlight[id]
	return ok
}
