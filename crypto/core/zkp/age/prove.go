package age

import (
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/pkg/errors"

	"github.com/Calnunes/ZK-Access-Control-System/common/metrics"
	"github.com/Calnunes/ZK-Access-Control-System/crypto/common/zkp"
)

// Prover produces proofs with a proving key. It holds no mutable state and
// can be shared between goroutines.
type Prover struct {
	info     *zkp.ZkpInfo
	relation Relation
}

// NewProver binds the key bundle produced by Setup(relation).
func NewProver(info *zkp.ZkpInfo, relation Relation) *Prover {
	return &Prover{info: info, relation: relation}
}

// Prove generate a zkp proof using ProvingKey
func (p *Prover) Prove(w Witness, pub PublicInput) (*Proof, error) {
	start := time.Now()
	defer func() {
		metrics.ProofGenerateHistogram.WithLabelValues(p.relation.String()).Observe(time.Since(start).Seconds())
	}()

	assign, err := assignment(p.relation, w, pub)
	if err != nil {
		return nil, err
	}
	full, err := frontend.NewWitness(assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, errors.Wrap(err, "build witness")
	}

	gp, err := groth16.Prove(p.info.R1CS, p.info.ProvingKey, full)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsatisfiedWitness, "groth16 prove: %v", err)
	}
	bp, ok := gp.(*groth16_bn254.Proof)
	if !ok {
		return nil, errors.Errorf("unexpected proof type %T", gp)
	}
	return newProof(bp)
}
