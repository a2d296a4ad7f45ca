// Package age implements a Groth16 proof that a private age reaches a public threshold.
package age

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
)

// DiffBits bounds age - min_age to [0, 2^DiffBits).
const DiffBits = 16

// NbPublicInputs is the number of public variables, min_age only.
const NbPublicInputs = 1

// Relation selects the constraint set synthesized by AgeCircuit.
type Relation int

const (
	// RelationThreshold proves 0 <= age - min_age < 2^DiffBits.
	RelationThreshold Relation = iota
	// RelationSquare only proves (age - min_age)^2 = d2. Squaring loses the sign,
	// so any age on either side of min_age satisfies it. Not sound for thresholds.
	RelationSquare
)

func (r Relation) String() string {
	switch r {
	case RelationThreshold:
		return "threshold"
	case RelationSquare:
		return "square"
	}
	return fmt.Sprintf("relation(%d)", int(r))
}

// ParseRelation maps a config value to a Relation.
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "", "threshold":
		return RelationThreshold, nil
	case "square":
		return RelationSquare, nil
	}
	return 0, fmt.Errorf("unknown relation %q", s)
}

// AgeCircuit is compiled with nil variables during setup and filled with
// values when proving.
type AgeCircuit struct {
	MinAge      frontend.Variable `gnark:",public"`
	Age         frontend.Variable `gnark:",secret"`
	DiffSquared frontend.Variable `gnark:",secret"`

	Relation Relation `gnark:"-"`
}

// Define declares the circuit constraints
func (c *AgeCircuit) Define(api frontend.API) error {
	diff := api.Sub(c.Age, c.MinAge)
	api.AssertIsEqual(api.Mul(diff, diff), c.DiffSquared)

	switch c.Relation {
	case RelationSquare:
		return nil
	case RelationThreshold:
		// bits are boolean-constrained and must recompose to diff
		api.ToBinary(diff, DiffBits)
		return nil
	}
	return fmt.Errorf("unknown relation %d", c.Relation)
}
