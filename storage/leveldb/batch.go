package leveldb

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// LDBBatch batch operation of leveldb
type LDBBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
	keys map[string]bool
}

// Put put key/value into batch
func (b *LDBBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(value)
	b.keys[string(key)] = true
	return nil
}

// Delete delete key from batch
func (b *LDBBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	b.keys[string(key)] = true
	return nil
}

// PutIfAbsent put key/value into batch only when the key is not staged yet
func (b *LDBBatch) PutIfAbsent(key, value []byte) error {
	if !b.keys[string(key)] {
		b.b.Put(key, value)
		b.size += len(value)
		b.keys[string(key)] = true
	}
	return nil
}

// Exist check if key is staged in the batch
func (b *LDBBatch) Exist(key []byte) bool {
	return b.keys[string(key)]
}

// ValueSize return value size of batch
func (b *LDBBatch) ValueSize() int {
	return b.size
}

// Write write batch into db atomically
func (b *LDBBatch) Write() error {
	return b.db.Write(b.b, nil)
}

// Reset reset batch
func (b *LDBBatch) Reset() {
	b.b.Reset()
	b.size = 0
	b.keys = make(map[string]bool)
}
