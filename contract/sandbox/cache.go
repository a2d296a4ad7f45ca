package sandbox

import (
	"errors"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
)

// ErrNotFound is returned by Get for absent or deleted keys.
var ErrNotFound = storage.ErrNotFound

type entry struct {
	value   []byte
	deleted bool
}

// StateCache is the write set of one call. Reads fall through to the
// underlying database, writes stay in memory until Flush.
type StateCache struct {
	db storage.Database
	// string key -> *entry, kept in key order
	wset *treemap.Map
}

func NewStateCache(db storage.Database) *StateCache {
	return &StateCache{
		db:   db,
		wset: treemap.NewWithStringComparator(),
	}
}

func (c *StateCache) Get(bucket string, key []byte) ([]byte, error) {
	if v, ok := c.wset.Get(string(base.StateKey(bucket, key))); ok {
		e := v.(*entry)
		if e.deleted {
			return nil, ErrNotFound
		}
		return e.value, nil
	}
	return c.db.Get(base.StateKey(bucket, key))
}

func (c *StateCache) Put(bucket string, key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	c.wset.Put(string(base.StateKey(bucket, key)), &entry{value: append([]byte(nil), value...)})
	return nil
}

func (c *StateCache) Del(bucket string, key []byte) error {
	c.wset.Put(string(base.StateKey(bucket, key)), &entry{deleted: true})
	return nil
}

func (c *StateCache) Select(bucket string, start, limit []byte) (base.Iterator, error) {
	prefix := base.StateKey(bucket, nil)
	from := base.StateKey(bucket, start)
	var to []byte
	if limit != nil {
		to = base.StateKey(bucket, limit)
	} else {
		to = prefixEnd(prefix)
	}
	if to != nil && compareBytes(from, to) >= 0 {
		return nil, errors.New("bad select range")
	}

	front := newMemIterator(c.entries(from, to))
	back := newDBIterator(c.db.NewIteratorWithRange(from, to))
	return newContractIterator(newStripDelIterator(newMultiIterator(front, back)), len(prefix)), nil
}

// Len returns the number of staged writes.
func (c *StateCache) Len() int {
	return c.wset.Size()
}

// Flush stages the write set into batch in key order.
func (c *StateCache) Flush(batch storage.Batch) error {
	it := c.wset.Iterator()
	for it.Next() {
		k, e := it.Key().(string), it.Value().(*entry)
		var err error
		if e.deleted {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), e.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops all staged writes.
func (c *StateCache) Discard() {
	c.wset.Clear()
}

// entries returns the staged entries in [from, to), to == nil means no bound.
func (c *StateCache) entries(from, to []byte) ([]string, []*entry) {
	var keys []string
	var values []*entry
	it := c.wset.Iterator()
	for it.Next() {
		k := it.Key().(string)
		if k < string(from) {
			continue
		}
		if to != nil && k >= string(to) {
			break
		}
		keys = append(keys, k)
		values = append(values, it.Value().(*entry))
	}
	return keys, values
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
