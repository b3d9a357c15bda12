package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title        Environment Access Broker API
// @version      1.0
// @description  Issues short-lived access tokens for notebook environments and redirects redeemed tokens to the notebook service.
// @BasePath     /
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Ephemeral access broker for notebook environments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newProbeCmd())
	return root
}
