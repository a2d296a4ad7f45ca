package age

import "errors"

var (
	// ErrAssignmentMissing is returned when proving without a value for a private variable.
	ErrAssignmentMissing = errors.New("assignment missing for private variable")
	// ErrUnsatisfiedWitness is returned when the witness does not satisfy the relation.
	ErrUnsatisfiedWitness = errors.New("witness does not satisfy the circuit")
	// ErrMalformedProof is returned for proof parts that cannot be decoded.
	ErrMalformedProof = errors.New("malformed proof encoding")
	// ErrMalformedPublicInput is returned for public input encodings that cannot be decoded.
	ErrMalformedPublicInput = errors.New("malformed public input encoding")
)
