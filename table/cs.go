package table

import (
	"container/list"
	"sync"
	"time"

	"github.com/oonfwd/oonfwd/defn"
)

// CsEntry is spec.md §3's CS entry: {name, data, insertionTime}, field
// names matching the teacher's fw/table/pit-cs_test.go baseCsEntry
// (index/staleTime/wire), adapted to this module's in-memory Data value
// instead of a raw wire buffer — the wire codec is out of scope.
type CsEntry struct {
	Name          defn.Name
	Data          *defn.Data
	InsertionTime time.Time
}

// ContentStore is spec.md §4's CS: Name -> Data cache with LRU eviction
// bounded by csMaxSize (spec.md §6). Unlike the Object Processor cache
// (table/op.go), which is badger-backed so ordinary CS churn can never
// evict a derivation source, the CS is a plain in-memory LRU: the
// teacher pack's own badger usage (std/object/storage) is reserved for
// a different concern (the object store), so there is no grounded reason
// to back ordinary CS traffic with an embedded KV store too.
type ContentStore struct {
	mu      sync.Mutex
	maxSize int
	index   map[string]*list.Element // keyed by Name.String()
	order   *list.List                // front = most recently used
}

// NewContentStore constructs a ContentStore bounded at maxSize entries.
func NewContentStore(maxSize int) *ContentStore {
	return &ContentStore{
		maxSize: maxSize,
		index:   make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Insert adds data to the store, evicting the least-recently-used entry
// if the store is at capacity. unsolicited is accepted for symmetry with
// the Object Processor cache's API (spec.md §6) but does not change CS
// behavior.
func (cs *ContentStore) Insert(data *defn.Data, unsolicited bool) {
	if cs.maxSize <= 0 {
		return
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	key := data.Name.String()
	if el, ok := cs.index[key]; ok {
		cs.order.MoveToFront(el)
		el.Value.(*CsEntry).Data = data
		el.Value.(*CsEntry).InsertionTime = time.Now()
		return
	}

	entry := &CsEntry{Name: data.Name, Data: data, InsertionTime: time.Now()}
	el := cs.order.PushFront(entry)
	cs.index[key] = el

	for len(cs.index) > cs.maxSize {
		back := cs.order.Back()
		if back == nil {
			break
		}
		cs.order.Remove(back)
		delete(cs.index, back.Value.(*CsEntry).Name.String())
	}
}

// Find looks up interest.Name, invoking hit with the matching Data if
// present and fresh enough for interest.MustBeFresh, or miss otherwise —
// the callback-style contract of spec.md §6's Content Store API.
func (cs *ContentStore) Find(interest *defn.Interest, hit func(*defn.Data), miss func()) {
	cs.mu.Lock()
	el, ok := cs.index[interest.Name.String()]
	var found *defn.Data
	if ok {
		entry := el.Value.(*CsEntry)
		if interest.SatisfiesCached(entry.Data, entry.InsertionTime) {
			cs.order.MoveToFront(el)
			found = entry.Data
		}
	}
	cs.mu.Unlock()

	if found != nil {
		hit(found)
		return
	}
	miss()
}

// Len returns the number of entries currently cached.
func (cs *ContentStore) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.index)
}
