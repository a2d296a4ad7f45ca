// KV database interface
package storage

import (
	"fmt"
	"sync"
)

// Iterator迭代器
type Iterator interface {
	Key() []byte
	Value() []byte
	Next() bool
	Prev() bool
	Last() bool
	First() bool
	Error() error
	Release()
}

// Database KV数据库的接口
type Database interface {
	Open(path string, options map[string]interface{}) error
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	Close()
	NewBatch() Batch
	NewIteratorWithRange(start []byte, limit []byte) Iterator
	NewIteratorWithPrefix(prefix []byte) Iterator
}

// Batch Batch操作的接口
type Batch interface {
	ValueSize() int
	Write() error
	Reset()
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	PutIfAbsent(key []byte, value []byte) error
	Exist(key []byte) bool
}

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = fmt.Errorf("key not found")

type NewDatabaseFunc func() Database

var (
	driverMu sync.Mutex
	drivers  = make(map[string]NewDatabaseFunc)
)

// Register 注册存储驱动，重复注册直接panic
func Register(name string, f NewDatabaseFunc) {
	driverMu.Lock()
	defer driverMu.Unlock()

	if _, exists := drivers[name]; exists {
		panic(fmt.Sprintf("storage driver %s exists", name))
	}
	drivers[name] = f
}

// CreateKVInstance opens a database with the named driver.
func CreateKVInstance(name, path string, options map[string]interface{}) (Database, error) {
	driverMu.Lock()
	newFunc, ok := drivers[name]
	driverMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("storage driver %s not exists", name)
	}

	db := newFunc()
	if err := db.Open(path, options); err != nil {
		return nil, fmt.Errorf("open %s database failed.path:%s,err:%v", name, path, err)
	}
	return db, nil
}
