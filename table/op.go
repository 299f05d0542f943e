package table

import (
	"github.com/dgraph-io/badger/v4"
	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
)

// ObjectProcessorCache is spec.md §3/§4's OP cache: a Name -> Data cache
// holding *source* variants usable for derivation, kept separate from the
// Content Store so that ordinary caching traffic can never evict a
// derivation source. Backed by an in-memory Badger instance (the
// teacher's own std/object/storage/store_badger.go pattern) so each
// entry's freshness can ride Badger's native per-key TTL instead of a
// hand-rolled expiry sweep. "In-memory" keeps this consistent with
// spec.md §1's "no persistence of tables across process restart"
// Non-goal: nothing is written to disk.
type ObjectProcessorCache struct {
	db *badger.DB
}

// NewObjectProcessorCache opens an in-memory Badger instance for the OP
// cache.
func NewObjectProcessorCache() (*ObjectProcessorCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &ObjectProcessorCache{db: db}, nil
}

// Close releases the underlying Badger instance.
func (op *ObjectProcessorCache) Close() error {
	return op.db.Close()
}

// Insert adds data to the OP cache, keyed by name, with a TTL equal to
// its FreshnessPeriod if set (absent freshness means "never stale", so
// no TTL is applied in that case — spec.md §3). unsolicited is accepted
// for API symmetry with the Content Store (spec.md §6) and has no extra
// effect here: the Non-goal "cache poisoning" guard lives in the
// forwarder's onDataUnsolicited pipeline, not in the cache itself.
func (op *ObjectProcessorCache) Insert(data *defn.Data, unsolicited bool) {
	key := []byte(data.Name.String())
	entry := badger.NewEntry(key, data.Content)
	if fp, ok := data.FreshnessPeriod.Get(); ok && fp > 0 {
		entry = entry.WithTTL(fp)
	}
	_ = op.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(entry)
	})
}

// Find looks up interest.Name, invoking hit with a reconstructed Data on
// a cache hit, or miss otherwise. The cache only stores content bytes
// (not the full packet envelope), so the returned Data's Name is the
// lookup key and its FreshnessPeriod/Signature are left at zero value;
// the variant deriver only reads Content off the parent Data (spec.md
// §4.3.4), so this is sufficient.
func (op *ObjectProcessorCache) Find(interest *defn.Interest, hit func(*defn.Data), miss func()) {
	key := []byte(interest.Name.String())
	var content []byte
	err := op.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			content = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			core.Log.Warn(nil, "object processor cache lookup failed", "name", interest.Name.String(), "err", err)
		}
		miss()
		return
	}
	hit(&defn.Data{Name: interest.Name, Content: content})
}
