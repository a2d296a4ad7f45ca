package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Calnunes/ZK-Access-Control-System/contract/attest"
)

// LedgerCommand groups the attestation ledger calls.
type LedgerCommand struct {
	cli *Cli
}

func NewLedgerCommand(cli *Cli) *cobra.Command {
	c := &LedgerCommand{cli: cli}
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Operate the attestation ledger: init|authorize|revoke|mint|owner|query|events.",
	}
	cmd.AddCommand(c.initCmd())
	cmd.AddCommand(c.minterCmd("authorize", "AddAuthorizedMinter", "Authorize an identity to request verification."))
	cmd.AddCommand(c.minterCmd("revoke", "RemoveAuthorizedMinter", "Remove an identity from the authorization set."))
	cmd.AddCommand(c.mintCmd())
	cmd.AddCommand(c.ownerCmd())
	cmd.AddCommand(c.queryCmd())
	cmd.AddCommand(c.eventsCmd())
	return cmd
}

// invoke runs one ledger method and prints the response body.
func (c *LedgerCommand) invoke(cmd *cobra.Command, method string, args map[string][]byte) error {
	r, err := c.cli.newRuntime()
	if err != nil {
		return err
	}
	defer r.Close()

	resp, err := r.Invoke(c.cli.caller(r), method, args)
	if err != nil {
		return err
	}
	if len(resp.Body) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(resp.Body))
	}
	return nil
}

func (c *LedgerCommand) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the ledger from the ledger config, the caller becomes administrator.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.cli.newRuntime()
			if err != nil {
				return err
			}
			lc := r.LedgerConf
			caller := c.cli.caller(r)
			_, err = r.Invoke(caller, "Initialize", map[string][]byte{
				attest.ArgName:   []byte(lc.Name),
				attest.ArgSymbol: []byte(lc.Symbol),
				attest.ArgIDBase: []byte(strconv.FormatUint(uint64(lc.IDBase), 10)),
			})
			r.Close()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s admin=%s\n", lc.Name, lc.Symbol, caller)
			return nil
		},
	}
}

func (c *LedgerCommand) minterCmd(use, method, short string) *cobra.Command {
	var identity string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.invoke(cmd, method, map[string][]byte{attest.ArgIdentity: []byte(identity)})
		},
	}
	cmd.Flags().StringVarP(&identity, "identity", "i", "", "minter identity")
	return cmd
}

func (c *LedgerCommand) mintCmd() *cobra.Command {
	var proofPath string
	cmd := &cobra.Command{
		Use:     "mint",
		Short:   "Mint an attestation for the caller from a proof file.",
		Example: "attest ledger mint --caller alice --proof ./proof.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			pf, err := readProofFile(proofPath)
			if err != nil {
				return err
			}
			bundle, err := pf.Bundle()
			if err != nil {
				return err
			}
			return c.invoke(cmd, "MintVerified", attest.BundleArgs(bundle))
		},
	}
	cmd.Flags().StringVarP(&proofPath, "proof", "p", "./proof.json", "proof file path")
	return cmd
}

func (c *LedgerCommand) ownerCmd() *cobra.Command {
	var id uint32
	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Print the owner of an attestation id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.invoke(cmd, "OwnerOf", map[string][]byte{
				attest.ArgID: []byte(strconv.FormatUint(uint64(id), 10)),
			})
		},
	}
	cmd.Flags().Uint32Var(&id, "id", 0, "attestation id")
	return cmd
}

func (c *LedgerCommand) queryCmd() *cobra.Command {
	var identity string
	cmd := &cobra.Command{
		Use:     "query [method]",
		Short:   "Call a read only ledger method such as HasValidToken, BalanceOf, TotalSupply or Name.",
		Example: "attest ledger query HasValidToken --identity alice",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.invoke(cmd, args[0], map[string][]byte{attest.ArgIdentity: []byte(identity)})
		},
	}
	cmd.Flags().StringVarP(&identity, "identity", "i", "", "identity argument")
	return cmd
}

func (c *LedgerCommand) eventsCmd() *cobra.Command {
	var from uint64
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the event log.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.cli.newRuntime()
			if err != nil {
				return err
			}
			defer r.Close()
			host, err := r.Host()
			if err != nil {
				return err
			}
			events, err := host.Events(from, limit)
			if err != nil {
				return err
			}
			for _, ev := range events {
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s %s caller=%s success=%v %s\n",
					ev.Seq, ev.Contract, ev.Name, ev.Caller, ev.Success, ev.Body)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 0, "first event sequence")
	cmd.Flags().IntVar(&limit, "limit", 0, "max events, 0 means all")
	return cmd
}

func init() {
	AddCommand(NewLedgerCommand)
}
