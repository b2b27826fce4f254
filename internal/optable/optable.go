// Package optable implements the server-side operation tables of cryptosim.
//
// Multi-part operations (hashes, MACs, ciphers) keep their state on the
// server; clients refer to them with opaque handles. Each operation class has
// its own fixed-capacity table binding handles to slots. Handles come from a
// per-table counter and are never dense: releasing a slot does not recycle
// its handle, and a failed allocation still consumes one.
package optable

import (
	"errors"
	"sync"
)

var (
	// ErrTableFull means every slot of the class is occupied. The failed
	// call can be retried once an operation completes.
	ErrTableFull = errors.New("optable: table full")

	// ErrHandleExhausted means the class issued its entire handle space.
	// The condition is permanent for the table.
	ErrHandleExhausted = errors.New("optable: handle space exhausted")

	// ErrNotFound means the handle is unknown, stale, or zero.
	ErrNotFound = errors.New("optable: handle not found")
)

// Handle identifies a live server-side operation within its class. The zero
// handle never identifies a slot: clients send it to mean "allocate a new
// operation".
type Handle uint32

type slot[T any] struct {
	handle Handle
	state  T
	live   bool
}

// Table is the registry for one operation class. Handle bindings are guarded
// by the table; the state a handle resolves to belongs to whoever holds the
// handle.
type Table[T any] struct {
	mutex sync.Mutex
	slots []slot[T]
	next  Handle
	dead  bool
}

// NewTable returns a table with a fixed number of slots. Handles start at 1.
func NewTable[T any](capacity int) *Table[T] {
	return &Table[T]{slots: make([]slot[T], capacity), next: 1}
}

// Allocate binds the next handle to the first free slot and returns it with a
// pointer to the zeroed slot state. When every slot is occupied it fails with
// ErrTableFull, leaving all live slots untouched; the handle value is spent
// regardless, which is fine because handles are identifiers, not indices.
//
// Every nonzero handle value is issued at most once. Once the counter would
// wrap to zero the class is permanently exhausted and every later Allocate
// fails with ErrHandleExhausted.
func (t *Table[T]) Allocate() (Handle, *T, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.dead {
		return 0, nil, ErrHandleExhausted
	}
	h := t.next
	if t.next++; t.next == 0 {
		t.dead = true
	}
	for i := range t.slots {
		if !t.slots[i].live {
			s := &t.slots[i]
			var zero T
			s.handle = h
			s.state = zero
			s.live = true
			return h, &s.state, nil
		}
	}
	return 0, nil, ErrTableFull
}

// Lookup resolves a handle to its slot state. Unknown, stale and zero handles
// fail with ErrNotFound.
func (t *Table[T]) Lookup(h Handle) (*T, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if s := t.find(h); s != nil {
		return &s.state, nil
	}
	return nil, ErrNotFound
}

// Release frees the slot bound to h. The handle goes stale; the slot becomes
// available to later allocations.
func (t *Table[T]) Release(h Handle) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	s := t.find(h)
	if s == nil {
		return ErrNotFound
	}
	*s = slot[T]{}
	return nil
}

// Reset frees every slot, making all outstanding handles stale. The counter
// is not rewound: handles issued before a reset can never collide with
// handles issued after it.
func (t *Table[T]) Reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for i := range t.slots {
		t.slots[i] = slot[T]{}
	}
}

// Live returns the number of occupied slots.
func (t *Table[T]) Live() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	n := 0
	for i := range t.slots {
		if t.slots[i].live {
			n++
		}
	}
	return n
}

func (t *Table[T]) find(h Handle) *slot[T] {
	if h == 0 {
		return nil
	}
	for i := range t.slots {
		if t.slots[i].live && t.slots[i].handle == h {
			return &t.slots[i]
		}
	}
	return nil
}
