package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/btcsuite/btcutil/base58"
	"github.com/docker/go-units"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Calnunes/ZK-Access-Control-System/crypto/core/zkp/age"
)

// SetupCommand runs a trusted setup and stores the key bundle.
type SetupCommand struct {
	cli      *Cli
	cmd      *cobra.Command
	relation string
	force    bool
}

func NewSetupCommand(cli *Cli) *cobra.Command {
	c := &SetupCommand{cli: cli}
	c.cmd = &cobra.Command{
		Use:     "setup",
		Short:   "Generate a proving key and verifying key and store them in the keystore.",
		Example: "attest setup --conf ./conf/env.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	c.cmd.Flags().StringVar(&c.relation, "relation", "", "relation to prove: threshold or square, defaults to the ledger config")
	c.cmd.Flags().BoolVarP(&c.force, "force", "f", false, "overwrite an existing key bundle without asking")
	return c.cmd
}

func (c *SetupCommand) setup() error {
	r, err := c.cli.newRuntime()
	if err != nil {
		return err
	}
	defer r.Close()

	relation, err := r.Relation()
	if err != nil {
		return err
	}
	if c.relation != "" {
		if relation, err = age.ParseRelation(c.relation); err != nil {
			return err
		}
	}

	if err := c.confirmOverwrite(r); err != nil {
		return err
	}

	start := time.Now()
	info, err := age.Setup(relation)
	if err != nil {
		return err
	}
	pk, err := info.ProvingKeyBytes()
	if err != nil {
		return err
	}
	vk, err := info.VerifyingKeyBytes()
	if err != nil {
		return err
	}
	if err := r.Keystore().Save(r.LedgerConf.KeyName, relation, info); err != nil {
		return err
	}

	r.Log.Info("setup done", "relation", relation, "key", r.LedgerConf.KeyName,
		"constraints", info.R1CS.GetNbConstraints(), "pk_size", units.HumanSize(float64(len(pk))),
		"vk_size", units.HumanSize(float64(len(vk))), "cost", time.Since(start))
	fmt.Fprintf(c.cmd.OutOrStdout(), "%s %s\n", r.LedgerConf.KeyName, base58.Encode(info.Fingerprint))
	return nil
}

// confirmOverwrite asks before replacing a stored bundle, proofs made with
// the old proving key stop verifying once it is gone.
func (c *SetupCommand) confirmOverwrite(r *Runtime) error {
	exist, err := r.Keystore().Has(r.LedgerConf.KeyName)
	if err != nil || !exist || c.force {
		return err
	}
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Key bundle %s exists, overwrite", r.LedgerConf.KeyName),
		IsConfirm: true,
		Stdin:     io.NopCloser(c.cmd.InOrStdin()),
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return fmt.Errorf("setup aborted, key bundle %s kept", r.LedgerConf.KeyName)
		}
		return err
	}
	return nil
}

func init() {
	AddCommand(NewSetupCommand)
}
