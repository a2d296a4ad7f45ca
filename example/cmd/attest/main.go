package main

import (
	"fmt"
	"os"

	"github.com/Calnunes/ZK-Access-Control-System/example/cmd/attest/cmd"
)

func main() {
	if err := cmd.NewCli().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
