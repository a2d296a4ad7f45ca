package age

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/pkg/errors"

	"github.com/Calnunes/ZK-Access-Control-System/common/metrics"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/common/zkp"
)

const (
	resultAccept    = "accept"
	resultReject    = "reject"
	resultMalformed = "malformed"
)

// Verifier checks proofs against a verifying key. It is pure and safe for
// concurrent use.
type Verifier struct {
	vk groth16.VerifyingKey
}

func NewVerifier(vk groth16.VerifyingKey) *Verifier {
	return &Verifier{vk: vk}
}

// VerificationKey returns the serialized verifying key.
func (v *Verifier) VerificationKey() ([]byte, error) {
	return zkp.VerifyingKeyBytes(v.vk)
}

// Verify returns (false, nil) when the encodings are valid but the pairing
// check fails, and (false, err) when they cannot be decoded.
func (v *Verifier) Verify(proof *Proof, pub PublicInput) (bool, error) {
	ok, err := v.verify(proof, pub)
	switch {
	case err != nil:
		metrics.ProofVerifyCounter.WithLabelValues(resultMalformed).Inc()
	case ok:
		metrics.ProofVerifyCounter.WithLabelValues(resultAccept).Inc()
	default:
		metrics.ProofVerifyCounter.WithLabelValues(resultReject).Inc()
	}
	return ok, err
}

// VerifyProof decodes the wire form of a proof bundle and verifies it.
func (v *Verifier) VerifyProof(a, b, c, publicInputs []byte) (bool, error) {
	proof, err := ParseProof(a, b, c)
	if err != nil {
		metrics.ProofVerifyCounter.WithLabelValues(resultMalformed).Inc()
		return false, err
	}
	pub, err := DecodePublicInput(publicInputs)
	if err != nil {
		metrics.ProofVerifyCounter.WithLabelValues(resultMalformed).Inc()
		return false, err
	}
	return v.Verify(proof, pub)
}

func (v *Verifier) verify(proof *Proof, pub PublicInput) (bool, error) {
	if proof == nil {
		return false, errors.Wrap(ErrMalformedProof, "nil proof")
	}
	if len(pub) != NbPublicInputs {
		return false, errors.Wrapf(ErrMalformedPublicInput, "want %d elements, got %d", NbPublicInputs, len(pub))
	}
	gp, err := proof.groth16()
	if err != nil {
		return false, err
	}

	assign := &AgeCircuit{MinAge: toBig(pub[0])}
	pubW, err := frontend.NewWitness(assign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, errors.Wrapf(ErrMalformedPublicInput, "build public witness: %v", err)
	}
	if err := groth16.Verify(gp, v.vk, pubW); err != nil {
		return false, nil
	}
	return true, nil
}
