package table

import (
	"sync"
	"time"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/sched"
)

type dnlKey struct {
	name  string
	nonce uint32
}

// DeadNonceList is spec.md §3's DNL: a bounded set of (Name, Nonce) pairs
// with a per-entry lifetime L_dnl, pruned of expired entries on every
// insert. Expiry order is kept in the generic min-heap from the sched
// package (sched.Queue) rather than a second hand-rolled structure.
type DeadNonceList struct {
	mu       sync.Mutex
	lifetime time.Duration
	maxSize  int
	set      map[dnlKey]struct{}
	expiry   sched.Queue[dnlKey, int64] // priority = expiry unix nanos
}

// NewDeadNonceList constructs a DeadNonceList with the given lifetime
// (spec.md §6's dnlLifetime, default 6s) and the given size bound
// maxSize; 0 means unbounded.
func NewDeadNonceList(lifetime time.Duration, maxSize int) *DeadNonceList {
	return &DeadNonceList{
		lifetime: lifetime,
		maxSize:  maxSize,
		set:      make(map[dnlKey]struct{}),
		expiry:   sched.NewQueue[dnlKey, int64](),
	}
}

// Lifetime returns L_dnl.
func (d *DeadNonceList) Lifetime() time.Duration { return d.lifetime }

// Has reports whether (name, nonce) was recently seen and has not yet
// expired.
func (d *DeadNonceList) Has(name defn.Name, nonce uint32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked()
	_, ok := d.set[dnlKey{name: name.String(), nonce: nonce}]
	return ok
}

// Add inserts (name, nonce), pruning expired entries first. Per spec.md
// §8's invariant, the set may exceed its configured bound by at most one
// insertion (we prune before and after adding, but never drop the
// just-inserted entry to enforce the bound mid-call).
func (d *DeadNonceList) Add(name defn.Name, nonce uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked()

	key := dnlKey{name: name.String(), nonce: nonce}
	if _, ok := d.set[key]; ok {
		return
	}
	d.set[key] = struct{}{}
	d.expiry.Push(key, time.Now().Add(d.lifetime).UnixNano())

	if d.maxSize > 0 {
		for len(d.set) > d.maxSize && d.expiry.Len() > 0 {
			oldest := d.expiry.Pop()
			delete(d.set, oldest)
		}
	}
}

// Len returns the number of live entries.
func (d *DeadNonceList) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked()
	return len(d.set)
}

func (d *DeadNonceList) pruneLocked() {
	now := time.Now().UnixNano()
	for d.expiry.Len() > 0 && d.expiry.PeekPriority() <= now {
		key := d.expiry.Pop()
		delete(d.set, key)
	}
}
