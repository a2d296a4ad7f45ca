package keystore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang/snappy"
	"github.com/patrickmn/go-cache"

	"github.com/Calnunes/ZK-Access-Control-System/crypto/common/zkp"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/age"
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

func TestSaveAndLoad(t *testing.T) {
	db := newTestDB(t)
	info, err := age.Setup(age.RelationThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if err := New(db, cache.NoExpiration).Save("default", age.RelationThreshold, info); err != nil {
		t.Fatal(err)
	}

	// fresh keystore so keys are decoded from storage
	ks := New(db, cache.NoExpiration)
	loaded, relation, err := ks.Load("default")
	if err != nil {
		t.Fatal(err)
	}
	if relation != age.RelationThreshold || !bytes.Equal(loaded.Fingerprint, info.Fingerprint) {
		t.Fatalf("unexpected bundle, relation=%s", relation)
	}
	cached, _, err := ks.Load("default")
	if err != nil || cached != loaded {
		t.Fatalf("second load should hit the cache, err=%v", err)
	}

	proof, err := age.NewProver(loaded, relation).Prove(age.NewWitness(25), age.NewPublicInput(18))
	if err != nil {
		t.Fatal(err)
	}
	verifier, err := New(db, cache.NoExpiration).LoadVerifier("default")
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := verifier.Verify(proof, age.NewPublicInput(18)); err != nil || !ok {
		t.Fatalf("proof rejected after reload, ok=%v err=%v", ok, err)
	}

	if ok, err := ks.Has("default"); err != nil || !ok {
		t.Fatalf("bundle should exist, ok=%v err=%v", ok, err)
	}
	if err := ks.Delete("default"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ks.Load("default"); !errors.Is(err, ErrBundleNotFound) {
		t.Fatalf("expect ErrBundleNotFound, got %v", err)
	}
}

func TestLoadRejectsForeignKey(t *testing.T) {
	db := newTestDB(t)
	first, err := age.Setup(age.RelationThreshold)
	if err != nil {
		t.Fatal(err)
	}
	second, err := age.Setup(age.RelationThreshold)
	if err != nil {
		t.Fatal(err)
	}
	if err := New(db, cache.NoExpiration).Save("default", age.RelationThreshold, first); err != nil {
		t.Fatal(err)
	}

	// overwrite the verifying key with one from another setup run
	vk, err := second.VerifyingKeyBytes()
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Put(dbKey("default", suffixVK), snappy.Encode(nil, vk)); err != nil {
		t.Fatal(err)
	}

	ks := New(db, cache.NoExpiration)
	if _, _, err := ks.Load("default"); !errors.Is(err, zkp.ErrKeyMismatch) {
		t.Fatalf("expect ErrKeyMismatch, got %v", err)
	}
	if _, err := ks.LoadVerifier("default"); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expect ErrFingerprintMismatch, got %v", err)
	}

	if err := db.Put(dbKey("default", suffixPK), []byte{0xff}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := ks.Load("default"); !errors.Is(err, zkp.ErrMalformedKey) {
		t.Fatalf("expect ErrMalformedKey, got %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	ks := New(newTestDB(t), cache.NoExpiration)
	if ok, err := ks.Has("nope"); err != nil || ok {
		t.Fatalf("unexpected bundle, ok=%v err=%v", ok, err)
	}
	if _, err := ks.LoadVerifier("nope"); !errors.Is(err, ErrBundleNotFound) {
		t.Fatalf("expect ErrBundleNotFound, got %v", err)
	}
}
