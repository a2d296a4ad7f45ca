package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/age"
)

// ProveCommand proves age >= min_age and writes a proof file.
type ProveCommand struct {
	cli    *Cli
	cmd    *cobra.Command
	age    uint64
	minAge uint64
	output string
}

func NewProveCommand(cli *Cli) *cobra.Command {
	c := &ProveCommand{cli: cli}
	c.cmd = &cobra.Command{
		Use:     "prove",
		Short:   "Prove that a private age reaches a public threshold.",
		Example: "attest prove --age 25 --min_age 18 --output ./proof.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.prove()
		},
	}
	c.cmd.Flags().Uint64Var(&c.age, "age", 0, "private age of the holder")
	c.cmd.Flags().Uint64Var(&c.minAge, "min_age", 18, "public minimum age")
	c.cmd.Flags().StringVarP(&c.output, "output", "o", "./proof.json", "proof file path")
	return c.cmd
}

func (c *ProveCommand) prove() error {
	r, err := c.cli.newRuntime()
	if err != nil {
		return err
	}
	defer r.Close()

	info, relation, err := r.Keystore().Load(r.LedgerConf.KeyName)
	if err != nil {
		return err
	}
	pub := age.NewPublicInput(c.minAge)
	proof, err := age.NewProver(info, relation).Prove(age.NewWitness(c.age), pub)
	if err != nil {
		return err
	}
	if err := writeProofFile(c.output, newProofFile(proof, pub)); err != nil {
		return err
	}
	r.Log.Info("proof generated", "relation", relation, "min_age", c.minAge, "output", c.output)
	fmt.Fprintln(c.cmd.OutOrStdout(), c.output)
	return nil
}

func init() {
	AddCommand(NewProveCommand)
}
