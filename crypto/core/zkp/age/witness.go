package age

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

// WitnessAge is the witness key holding the private age.
const WitnessAge = "age"

// Witness maps private variable names to values. It is never serialized.
type Witness map[string]fr.Element

// NewWitness returns a witness holding age.
func NewWitness(age uint64) Witness {
	var e fr.Element
	e.SetUint64(age)
	return Witness{WitnessAge: e}
}

func (w Witness) lookup(name string) (fr.Element, error) {
	v, ok := w[name]
	if !ok {
		return fr.Element{}, errors.Wrapf(ErrAssignmentMissing, "variable %q", name)
	}
	return v, nil
}

// PublicInput is the ordered list of public values, here [min_age].
type PublicInput []fr.Element

// NewPublicInput returns the public input for a min_age threshold.
func NewPublicInput(minAge uint64) PublicInput {
	var e fr.Element
	e.SetUint64(minAge)
	return PublicInput{e}
}

// Encode concatenates the elements as 32-byte big-endian strings.
func (p PublicInput) Encode() []byte {
	out := make([]byte, 0, len(p)*fr.Bytes)
	for i := range p {
		b := p[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// DecodePublicInput parses the concatenated 32-byte big-endian encoding.
// Values not reduced modulo the field order are rejected.
func DecodePublicInput(raw []byte) (PublicInput, error) {
	if len(raw) == 0 || len(raw)%fr.Bytes != 0 {
		return nil, errors.Wrapf(ErrMalformedPublicInput, "length %d is not a positive multiple of %d", len(raw), fr.Bytes)
	}
	out := make(PublicInput, len(raw)/fr.Bytes)
	for i := range out {
		if err := out[i].SetBytesCanonical(raw[i*fr.Bytes : (i+1)*fr.Bytes]); err != nil {
			return nil, errors.Wrapf(ErrMalformedPublicInput, "element %d: %v", i, err)
		}
	}
	return out, nil
}

func toBig(e fr.Element) *big.Int {
	return e.BigInt(new(big.Int))
}

// satisfied evaluates the relation natively so an invalid witness fails before proving.
func (r Relation) satisfied(age, minAge fr.Element) bool {
	if r == RelationSquare {
		return true
	}
	var diff fr.Element
	diff.Sub(&age, &minAge)
	return toBig(diff).BitLen() <= DiffBits
}

// assignment builds the full circuit assignment; d2 is derived from the witness.
func assignment(r Relation, w Witness, pub PublicInput) (*AgeCircuit, error) {
	if len(pub) != NbPublicInputs {
		return nil, errors.Wrapf(ErrMalformedPublicInput, "want %d elements, got %d", NbPublicInputs, len(pub))
	}
	age, err := w.lookup(WitnessAge)
	if err != nil {
		return nil, err
	}
	if !r.satisfied(age, pub[0]) {
		return nil, errors.Wrapf(ErrUnsatisfiedWitness, "%s relation", r)
	}

	var diff, d2 fr.Element
	diff.Sub(&age, &pub[0])
	d2.Square(&diff)
	return &AgeCircuit{
		MinAge:      toBig(pub[0]),
		Age:         toBig(age),
		DiffSquared: toBig(d2),
		Relation:    r,
	}, nil
}
