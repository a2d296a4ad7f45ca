package hash

import (
	"encoding/hex"
	"testing"
)

func TestHashUsingKeccak256(t *testing.T) {
	// keccak256("") 的标准结果
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := hex.EncodeToString(HashUsingKeccak256()); got != want {
		t.Fatalf("keccak256 of empty input = %s", got)
	}
	joined := HashUsingKeccak256([]byte("ab"), []byte("c"))
	if hex.EncodeToString(joined) != hex.EncodeToString(HashUsingKeccak256([]byte("abc"))) {
		t.Fatal("parts should hash as their concatenation")
	}
}

func TestDoubleSha256(t *testing.T) {
	once := HashUsingSha256([]byte("attest"))
	if hex.EncodeToString(DoubleSha256([]byte("attest"))) != hex.EncodeToString(HashUsingSha256(once)) {
		t.Fatal("double sha256 mismatch")
	}
}
