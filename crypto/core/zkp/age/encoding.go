package age

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/pkg/errors"
)

const (
	ProofASize = bn254.SizeOfG1AffineUncompressed
	ProofBSize = bn254.SizeOfG2AffineUncompressed
	ProofCSize = bn254.SizeOfG1AffineUncompressed
	ProofSize  = ProofASize + ProofBSize + ProofCSize
)

// Proof is a Groth16 proof split into its A (G1), B (G2) and C (G1) points,
// each in raw uncompressed affine form.
type Proof struct {
	A [ProofASize]byte
	B [ProofBSize]byte
	C [ProofCSize]byte
}

// Parts returns copies of the three proof points.
func (p *Proof) Parts() (a, b, c []byte) {
	return append([]byte(nil), p.A[:]...), append([]byte(nil), p.B[:]...), append([]byte(nil), p.C[:]...)
}

// Bytes returns A || B || C.
func (p *Proof) Bytes() []byte {
	out := make([]byte, 0, ProofSize)
	out = append(out, p.A[:]...)
	out = append(out, p.B[:]...)
	return append(out, p.C[:]...)
}

// ParseProof checks the part sizes. Curve membership is checked on verification.
func ParseProof(a, b, c []byte) (*Proof, error) {
	if len(a) != ProofASize || len(b) != ProofBSize || len(c) != ProofCSize {
		return nil, errors.Wrapf(ErrMalformedProof, "part sizes %d/%d/%d, want %d/%d/%d",
			len(a), len(b), len(c), ProofASize, ProofBSize, ProofCSize)
	}
	p := &Proof{}
	copy(p.A[:], a)
	copy(p.B[:], b)
	copy(p.C[:], c)
	return p, nil
}

// ParseProofBytes splits A || B || C.
func ParseProofBytes(raw []byte) (*Proof, error) {
	if len(raw) != ProofSize {
		return nil, errors.Wrapf(ErrMalformedProof, "proof size %d, want %d", len(raw), ProofSize)
	}
	return ParseProof(raw[:ProofASize], raw[ProofASize:ProofASize+ProofBSize], raw[ProofASize+ProofBSize:])
}

func newProof(gp *groth16_bn254.Proof) (*Proof, error) {
	if len(gp.Commitments) > 0 {
		return nil, errors.New("proofs with commitments are not supported")
	}
	p := &Proof{}
	copy(p.A[:], gp.Ar.Marshal())
	copy(p.B[:], gp.Bs.Marshal())
	copy(p.C[:], gp.Krs.Marshal())
	return p, nil
}

// groth16 decodes the points, rejecting ones off the curve or outside the subgroup.
func (p *Proof) groth16() (*groth16_bn254.Proof, error) {
	gp := &groth16_bn254.Proof{}
	if err := gp.Ar.Unmarshal(p.A[:]); err != nil {
		return nil, errors.Wrapf(ErrMalformedProof, "point A: %v", err)
	}
	if err := gp.Bs.Unmarshal(p.B[:]); err != nil {
		return nil, errors.Wrapf(ErrMalformedProof, "point B: %v", err)
	}
	if err := gp.Krs.Unmarshal(p.C[:]); err != nil {
		return nil, errors.Wrapf(ErrMalformedProof, "point C: %v", err)
	}
	return gp, nil
}
