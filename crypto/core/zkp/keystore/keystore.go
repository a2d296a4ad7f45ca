// Package keystore persists key bundles produced by age.Setup.
package keystore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
	"github.com/patrickmn/go-cache"

	"github.com/Calnunes/ZK-Access-Control-System/crypto/common/zkp"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/age"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
)

var (
	ErrBundleNotFound      = errors.New("key bundle not found")
	ErrFingerprintMismatch = errors.New("stored fingerprint does not match verifying key")
)

const (
	keyPrefix = "zkp/"

	suffixMeta = "/meta"
	suffixPK   = "/pk"
	suffixVK   = "/vk"
)

type meta struct {
	Relation    string `json:"relation"`
	Fingerprint []byte `json:"fingerprint"`
	CreatedAt   int64  `json:"created_at"`
}

// Keystore saves proving and verifying keys as snappy compressed blobs and
// keeps decoded bundles in memory.
type Keystore struct {
	db    storage.Database
	cache *cache.Cache
}

// New creates a keystore over db. Decoded bundles expire from memory after ttl,
// cache.NoExpiration keeps them forever.
func New(db storage.Database, ttl time.Duration) *Keystore {
	return &Keystore{
		db:    db,
		cache: cache.New(ttl, time.Minute),
	}
}

// Save writes the bundle under name in one batch, replacing a previous one.
func (k *Keystore) Save(name string, relation age.Relation, info *zkp.ZkpInfo) error {
	pk, err := info.ProvingKeyBytes()
	if err != nil {
		return err
	}
	vk, err := info.VerifyingKeyBytes()
	if err != nil {
		return err
	}
	m, err := json.Marshal(&meta{
		Relation:    relation.String(),
		Fingerprint: info.Fingerprint,
		CreatedAt:   time.Now().Unix(),
	})
	if err != nil {
		return err
	}

	batch := k.db.NewBatch()
	batch.Put(dbKey(name, suffixMeta), m)
	batch.Put(dbKey(name, suffixPK), snappy.Encode(nil, pk))
	batch.Put(dbKey(name, suffixVK), snappy.Encode(nil, vk))
	if err := batch.Write(); err != nil {
		return fmt.Errorf("save key bundle %s: %w", name, err)
	}
	k.cache.SetDefault(name, info)
	return nil
}

// Load returns the full bundle, checking that both keys come from one setup
// run and match the recorded fingerprint.
func (k *Keystore) Load(name string) (*zkp.ZkpInfo, age.Relation, error) {
	m, relation, err := k.loadMeta(name)
	if err != nil {
		return nil, 0, err
	}
	if v, ok := k.cache.Get(name); ok {
		return v.(*zkp.ZkpInfo), relation, nil
	}

	pk, err := k.loadBlob(name, suffixPK)
	if err != nil {
		return nil, 0, err
	}
	vk, err := k.loadBlob(name, suffixVK)
	if err != nil {
		return nil, 0, err
	}
	info, err := age.LoadZkpInfo(relation, pk, vk)
	if err != nil {
		return nil, 0, fmt.Errorf("load key bundle %s: %w", name, err)
	}
	if !bytes.Equal(info.Fingerprint, m.Fingerprint) {
		return nil, 0, fmt.Errorf("load key bundle %s: %w", name, ErrFingerprintMismatch)
	}
	k.cache.SetDefault(name, info)
	return info, relation, nil
}

// LoadVerifier returns a verifier without decoding the proving key.
func (k *Keystore) LoadVerifier(name string) (*age.Verifier, error) {
	if v, ok := k.cache.Get(name); ok {
		return age.NewVerifier(v.(*zkp.ZkpInfo).VerifyingKey), nil
	}
	m, _, err := k.loadMeta(name)
	if err != nil {
		return nil, err
	}
	blob, err := k.loadBlob(name, suffixVK)
	if err != nil {
		return nil, err
	}
	vk, err := zkp.ReadVerifyingKey(blob)
	if err != nil {
		return nil, err
	}
	fp, err := zkp.Fingerprint(vk)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(fp, m.Fingerprint) {
		return nil, fmt.Errorf("load verifying key %s: %w", name, ErrFingerprintMismatch)
	}
	return age.NewVerifier(vk), nil
}

// Has reports whether a bundle is stored under name.
func (k *Keystore) Has(name string) (bool, error) {
	if _, ok := k.cache.Get(name); ok {
		return true, nil
	}
	return k.db.Has(dbKey(name, suffixMeta))
}

// Delete removes the bundle from storage and memory.
func (k *Keystore) Delete(name string) error {
	batch := k.db.NewBatch()
	for _, s := range []string{suffixMeta, suffixPK, suffixVK} {
		batch.Delete(dbKey(name, s))
	}
	k.cache.Delete(name)
	return batch.Write()
}

func (k *Keystore) loadMeta(name string) (*meta, age.Relation, error) {
	raw, err := k.db.Get(dbKey(name, suffixMeta))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, 0, fmt.Errorf("%w: %s", ErrBundleNotFound, name)
	}
	if err != nil {
		return nil, 0, err
	}
	m := &meta{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, 0, fmt.Errorf("%w: meta of %s: %v", zkp.ErrMalformedKey, name, err)
	}
	relation, err := age.ParseRelation(m.Relation)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: meta of %s: %v", zkp.ErrMalformedKey, name, err)
	}
	return m, relation, nil
}

func (k *Keystore) loadBlob(name, suffix string) ([]byte, error) {
	raw, err := k.db.Get(dbKey(name, suffix))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s%s", ErrBundleNotFound, name, suffix)
	}
	if err != nil {
		return nil, err
	}
	blob, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s%s: %v", zkp.ErrMalformedKey, name, suffix, err)
	}
	return blob, nil
}

func dbKey(name, suffix string) []byte {
	return []byte(keyPrefix + name + suffix)
}
