package age

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/pkg/errors"

	"github.com/Calnunes/ZK-Access-Control-System/crypto/common/zkp"
)

// Compile synthesizes the relation into an R1CS over the BN254 scalar field.
func Compile(relation Relation) (constraint.ConstraintSystem, error) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &AgeCircuit{Relation: relation})
	if err != nil {
		return nil, errors.Wrapf(err, "compile %s circuit", relation)
	}
	return ccs, nil
}

// Setup generate CompiledConstraintSystem, ProvingKey and VerifyingKey.
// Every call samples fresh randomness, so two runs never produce compatible keys.
func Setup(relation Relation) (*zkp.ZkpInfo, error) {
	ccs, err := Compile(relation)
	if err != nil {
		return nil, err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, errors.Wrap(err, "groth16 setup")
	}
	return zkp.NewZkpInfo(ccs, pk, vk)
}

// LoadZkpInfo recompiles the relation and imports serialized keys. Keys from
// different setup runs are rejected with zkp.ErrKeyMismatch.
func LoadZkpInfo(relation Relation, pkBlob, vkBlob []byte) (*zkp.ZkpInfo, error) {
	ccs, err := Compile(relation)
	if err != nil {
		return nil, err
	}
	pk, err := zkp.ReadProvingKey(pkBlob)
	if err != nil {
		return nil, err
	}
	vk, err := zkp.ReadVerifyingKey(vkBlob)
	if err != nil {
		return nil, err
	}
	return zkp.NewZkpInfo(ccs, pk, vk)
}
