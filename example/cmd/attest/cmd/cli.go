package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Commands 子命令构造函数列表
var commands []func(cli *Cli) *cobra.Command

// AddCommand add sub command
func AddCommand(cmdFunc func(cli *Cli) *cobra.Command) {
	commands = append(commands, cmdFunc)
}

// Cli is the age attestation command line
type Cli struct {
	RootCmd *cobra.Command
	// EnvConf 环境配置文件路径
	EnvConf string
	// Caller is the identity the ledger sees
	Caller string
}

func NewCli() *Cli {
	cli := &Cli{}
	cli.RootCmd = &cobra.Command{
		Use:           "attest",
		Short:         "Age attestation: zero knowledge age proofs and the attestation ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.RootCmd.PersistentFlags().StringVarP(&cli.EnvConf, "conf", "c", "./conf/env.yaml", "env config file path")
	cli.RootCmd.PersistentFlags().StringVar(&cli.Caller, "caller", "", "caller identity, defaults to the configured admin")

	for _, f := range commands {
		cli.RootCmd.AddCommand(f(cli))
	}
	return cli
}

func (c *Cli) Execute() error {
	return c.RootCmd.Execute()
}

// SetArgs replaces the process arguments, used in tests.
func (c *Cli) SetArgs(args []string) {
	c.RootCmd.SetArgs(args)
}

func (c *Cli) newRuntime() (*Runtime, error) {
	return NewRuntime(c.EnvConf)
}

func (c *Cli) caller(r *Runtime) string {
	if c.Caller != "" {
		return c.Caller
	}
	return r.LedgerConf.Admin
}

// dumpMetrics logs every registered metric family.
func dumpMetrics(r *Runtime) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		r.Log.Warn("gather metrics failed", "err", err)
		return
	}
	for _, mf := range families {
		r.Log.Info("metric", "name", mf.GetName(), "series", len(mf.GetMetric()))
	}
}
