package zkp

import (
	"bytes"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/constraint"
	"github.com/pkg/errors"

	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/hash"
)

var (
	// ErrKeyMismatch is returned when a proving key and a verifying key come from different setup runs.
	ErrKeyMismatch = errors.New("proving key and verifying key are from different setup runs")
	// ErrMalformedKey is returned when a serialized key cannot be decoded.
	ErrMalformedKey = errors.New("malformed key encoding")
)

// ZkpInfo includes ConstraintSystem、ProvingKey、VerifyingKey
type ZkpInfo struct {
	R1CS         constraint.ConstraintSystem
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
	// Fingerprint identifies the setup run, keccak256 of the serialized verifying key.
	Fingerprint []byte
}

// NewZkpInfo bundles the outputs of one setup run and checks they belong together.
func NewZkpInfo(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) (*ZkpInfo, error) {
	if err := CheckKeyPair(pk, vk); err != nil {
		return nil, err
	}
	fp, err := Fingerprint(vk)
	if err != nil {
		return nil, err
	}
	return &ZkpInfo{
		R1CS:         ccs,
		ProvingKey:   pk,
		VerifyingKey: vk,
		Fingerprint:  fp,
	}, nil
}

// ProvingKeyBytes serializes the proving key.
func (z *ZkpInfo) ProvingKeyBytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := z.ProvingKey.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "write proving key")
	}
	return buf.Bytes(), nil
}

// VerifyingKeyBytes serializes the verifying key.
func (z *ZkpInfo) VerifyingKeyBytes() ([]byte, error) {
	return VerifyingKeyBytes(z.VerifyingKey)
}

// VerifyingKeyBytes serializes vk with gnark's binary encoding.
func VerifyingKeyBytes(vk groth16.VerifyingKey) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := vk.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "write verifying key")
	}
	return buf.Bytes(), nil
}

// Fingerprint returns keccak256 of the serialized verifying key.
func Fingerprint(vk groth16.VerifyingKey) ([]byte, error) {
	raw, err := VerifyingKeyBytes(vk)
	if err != nil {
		return nil, err
	}
	return hash.HashUsingKeccak256(raw), nil
}

func ReadProvingKey(blob []byte) (groth16.ProvingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(blob)); err != nil {
		return nil, errors.Wrapf(ErrMalformedKey, "proving key: %v", err)
	}
	return pk, nil
}

func ReadVerifyingKey(blob []byte) (groth16.VerifyingKey, error) {
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(blob)); err != nil {
		return nil, errors.Wrapf(ErrMalformedKey, "verifying key: %v", err)
	}
	return vk, nil
}

// CheckKeyPair makes sure pk and vk share the alpha, beta and delta elements
// sampled by a single setup run.
func CheckKeyPair(pk groth16.ProvingKey, vk groth16.VerifyingKey) error {
	bpk, ok := pk.(*groth16_bn254.ProvingKey)
	if !ok {
		return errors.Wrapf(ErrMalformedKey, "unsupported proving key type %T", pk)
	}
	bvk, ok := vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return errors.Wrapf(ErrMalformedKey, "unsupported verifying key type %T", vk)
	}

	if !bpk.G1.Alpha.Equal(&bvk.G1.Alpha) ||
		!bpk.G1.Beta.Equal(&bvk.G1.Beta) ||
		!bpk.G1.Delta.Equal(&bvk.G1.Delta) ||
		!bpk.G2.Beta.Equal(&bvk.G2.Beta) ||
		!bpk.G2.Delta.Equal(&bvk.G2.Delta) {
		return ErrKeyMismatch
	}
	return nil
}
