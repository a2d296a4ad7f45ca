package cmd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Calnunes/ZK-Access-Control-System/contract/attest"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/hash"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/age"
)

const checksumLen = 4

var errChecksumMismatch = errors.New("proof file checksum mismatch")

// ProofFile is the hex encoded proof bundle exchanged between prove, verify and mint.
type ProofFile struct {
	ProofA       string `json:"proof_a"`
	ProofB       string `json:"proof_b"`
	ProofC       string `json:"proof_c"`
	PublicInputs string `json:"public_inputs"`
	// first bytes of double sha256 over the decoded fields
	Checksum string `json:"checksum"`
}

func newProofFile(proof *age.Proof, pub age.PublicInput) *ProofFile {
	a, b, c := proof.Parts()
	raw := pub.Encode()
	return &ProofFile{
		ProofA:       hex.EncodeToString(a),
		ProofB:       hex.EncodeToString(b),
		ProofC:       hex.EncodeToString(c),
		PublicInputs: hex.EncodeToString(raw),
		Checksum:     hex.EncodeToString(checksum(a, b, c, raw)),
	}
}

func checksum(parts ...[]byte) []byte {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return hash.DoubleSha256(buf)[:checksumLen]
}

func (p *ProofFile) Bundle() (*attest.ProofBundle, error) {
	parts := make([][]byte, 4)
	for i, s := range []string{p.ProofA, p.ProofB, p.ProofC, p.PublicInputs} {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("decode proof file field %d: %v", i, err)
		}
		parts[i] = b
	}
	if hex.EncodeToString(checksum(parts...)) != p.Checksum {
		return nil, errChecksumMismatch
	}
	return &attest.ProofBundle{A: parts[0], B: parts[1], C: parts[2], PublicInputs: parts[3]}, nil
}

func writeProofFile(path string, pf *ProofFile) error {
	raw, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

func readProofFile(path string) (*ProofFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pf := &ProofFile{}
	if err := json.Unmarshal(raw, pf); err != nil {
		return nil, fmt.Errorf("parse proof file %s: %v", path, err)
	}
	return pf, nil
}
