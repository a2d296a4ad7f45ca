package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/age"
)

// VerifyCommand verifies proof files off the ledger.
type VerifyCommand struct {
	cli     *Cli
	cmd     *cobra.Command
	workers int
}

func NewVerifyCommand(cli *Cli) *cobra.Command {
	c := &VerifyCommand{cli: cli}
	c.cmd = &cobra.Command{
		Use:     "verify [proof files]",
		Short:   "Verify one or more proof files concurrently.",
		Example: "attest verify ./proof.json ./other.json",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.verify(args)
		},
	}
	c.cmd.Flags().IntVarP(&c.workers, "workers", "w", 0, "verification workers, 0 means GOMAXPROCS")
	return c.cmd
}

func (c *VerifyCommand) verify(paths []string) error {
	r, err := c.cli.newRuntime()
	if err != nil {
		return err
	}
	defer r.Close()

	verifier, err := r.Keystore().LoadVerifier(r.LedgerConf.KeyName)
	if err != nil {
		return err
	}

	items := make([]age.BatchItem, len(paths))
	for i, path := range paths {
		pf, err := readProofFile(path)
		if err != nil {
			return err
		}
		bundle, err := pf.Bundle()
		if err != nil {
			return err
		}
		proof, err := age.ParseProof(bundle.A, bundle.B, bundle.C)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		pub, err := age.DecodePublicInput(bundle.PublicInputs)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		items[i] = age.BatchItem{Proof: proof, Public: pub}
	}

	results, err := verifier.VerifyBatch(context.Background(), items, c.workers)
	if err != nil {
		return err
	}
	out := c.cmd.OutOrStdout()
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(out, "%s error: %v\n", paths[i], res.Err)
			continue
		}
		fmt.Fprintf(out, "%s %v\n", paths[i], res.Valid)
	}
	return nil
}

func init() {
	AddCommand(NewVerifyCommand)
}
