package leveldb

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	lstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Calnunes/ZK-Access-Control-System/storage"
)

// DriverName is the name the leveldb driver registers under.
const DriverName = "leveldb"

// LDBDatabase define data structure of storage
type LDBDatabase struct {
	fn string
	db *leveldb.DB
}

// NewLDBDatabase returns an unopened leveldb database.
func NewLDBDatabase() storage.Database {
	return &LDBDatabase{}
}

// NewMemDatabase opens a leveldb instance backed by memory, used by tests and tools.
func NewMemDatabase() (storage.Database, error) {
	ldb := &LDBDatabase{}
	err := ldb.Open("", map[string]interface{}{"memory": true})
	if err != nil {
		return nil, err
	}
	return ldb, nil
}

func setDefaultOptions(options map[string]interface{}) {
	if _, ok := options["cache"]; !ok {
		options["cache"] = 16
	}
	if _, ok := options["fds"]; !ok {
		options["fds"] = 16
	}
	if _, ok := options["dataPaths"]; !ok {
		options["dataPaths"] = []string{}
	}
	if _, ok := options["memory"]; !ok {
		options["memory"] = false
	}
}

// Open opens an instance of LDB with parameters (ldb path and other options)
func (ldb *LDBDatabase) Open(path string, options map[string]interface{}) error {
	if options == nil {
		options = make(map[string]interface{})
	}
	setDefaultOptions(options)
	cache := options["cache"].(int)
	fds := options["fds"].(int)
	dataPaths := options["dataPaths"].([]string)

	o := &opt.Options{
		OpenFilesCacheCapacity: fds,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	}
	if options["memory"].(bool) {
		db, err := leveldb.Open(lstorage.NewMemStorage(), o)
		if err != nil {
			return err
		}
		ldb.fn = ":memory:"
		ldb.db = db
		return nil
	}

	// 如果没有配置多盘则按照Single方式打开数据库
	if len(dataPaths) > 0 {
		return fmt.Errorf("multi disk not supported")
	}
	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(path, o)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	// (Re)check for errors and abort if opening of the db failed
	if err != nil {
		return err
	}
	ldb.fn = path
	ldb.db = db
	return nil
}

// Path returns the path to the database directory.
func (ldb *LDBDatabase) Path() string {
	return ldb.fn
}

// Put puts the given key / value to the queue
func (ldb *LDBDatabase) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

// Has if key exist
func (ldb *LDBDatabase) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

// Get returns the given key if it's present.
func (ldb *LDBDatabase) Get(key []byte) ([]byte, error) {
	dat, err := ldb.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return dat, nil
}

// Delete deletes the key from the queue and database
func (ldb *LDBDatabase) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

// NewIteratorWithRange returns a iterator over [start, limit)
func (ldb *LDBDatabase) NewIteratorWithRange(start []byte, limit []byte) storage.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: start, Limit: limit}, nil)
}

// NewIteratorWithPrefix returns a iterator over keys with the given prefix
func (ldb *LDBDatabase) NewIteratorWithPrefix(prefix []byte) storage.Iterator {
	return ldb.db.NewIterator(util.BytesPrefix(prefix), nil)
}

// Close close database instance
func (ldb *LDBDatabase) Close() {
	ldb.db.Close()
}

// NewBatch new a batch for writing
func (ldb *LDBDatabase) NewBatch() storage.Batch {
	return &LDBBatch{
		db:   ldb.db,
		b:    new(leveldb.Batch),
		keys: make(map[string]bool),
	}
}

func init() {
	storage.Register(DriverName, NewLDBDatabase)
}
