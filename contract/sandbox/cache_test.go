package sandbox

import (
	"errors"
	"testing"

	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
	"github.com/Calnunes/ZK-Access-Control-System/storage/leveldb"
)

func newTestDB(t *testing.T) storage.Database {
	t.Helper()
	db, err := leveldb.NewMemDatabase()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestStateCacheReadYourWrites(t *testing.T) {
	db := newTestDB(t)
	if err := db.Put(base.StateKey("b", []byte("k1")), []byte("old")); err != nil {
		t.Fatal(err)
	}

	c := NewStateCache(db)
	if v, err := c.Get("b", []byte("k1")); err != nil || string(v) != "old" {
		t.Fatalf("read through failed, v=%s err=%v", v, err)
	}
	c.Put("b", []byte("k1"), []byte("new"))
	if v, _ := c.Get("b", []byte("k1")); string(v) != "new" {
		t.Fatalf("staged write not visible, v=%s", v)
	}
	c.Del("b", []byte("k1"))
	if _, err := c.Get("b", []byte("k1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expect ErrNotFound after delete, got %v", err)
	}
	if v, _ := db.Get(base.StateKey("b", []byte("k1"))); string(v) != "old" {
		t.Fatal("database changed before flush")
	}

	c.Discard()
	if c.Len() != 0 {
		t.Fatal("discard kept writes")
	}
	c.Put("b", []byte("k2"), []byte("v2"))
	c.Del("b", []byte("k1"))
	batch := db.NewBatch()
	if err := c.Flush(batch); err != nil {
		t.Fatal(err)
	}
	if err := batch.Write(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := db.Has(base.StateKey("b", []byte("k1"))); ok {
		t.Fatal("delete not flushed")
	}
	if v, _ := db.Get(base.StateKey("b", []byte("k2"))); string(v) != "v2" {
		t.Fatal("put not flushed")
	}
}

func TestStateCacheSelect(t *testing.T) {
	db := newTestDB(t)
	for _, k := range []string{"a", "c", "e"} {
		db.Put(base.StateKey("m", []byte(k)), []byte("db"))
	}
	db.Put(base.StateKey("other", []byte("b")), []byte("x"))

	c := NewStateCache(db)
	c.Put("m", []byte("b"), []byte("mem"))
	c.Put("m", []byte("c"), []byte("mem"))
	c.Del("m", []byte("e"))

	iter, err := c.Select("m", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer iter.Close()
	var got []string
	for iter.Next() {
		got = append(got, string(iter.Key())+"="+string(iter.Value()))
	}
	if iter.Error() != nil {
		t.Fatal(iter.Error())
	}
	want := []string{"a=db", "b=mem", "c=mem"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	ranged, err := c.Select("m", []byte("b"), []byte("c"))
	if err != nil {
		t.Fatal(err)
	}
	defer ranged.Close()
	if !ranged.Next() || string(ranged.Key()) != "b" || ranged.Next() {
		t.Fatal("range select returned unexpected keys")
	}

	if _, err := c.Select("m", []byte("z"), []byte("a")); err == nil {
		t.Fatal("inverted range accepted")
	}
}
