package hash

import (
	"crypto/sha256"

	"golang.org/x/crypto/sha3"
)

func HashUsingSha256(data []byte) []byte {
	h := sha256.New()
	h.Write(data)
	out := h.Sum(nil)

	return out
}

// 执行2次SHA256，这是为了防止SHA256算法被攻破。
func DoubleSha256(data []byte) []byte {
	return HashUsingSha256(HashUsingSha256(data))
}

// HashUsingKeccak256 hashes the concatenation of all parts with legacy Keccak-256.
func HashUsingKeccak256(parts ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
