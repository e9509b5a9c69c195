// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package main

import (
	"github.com/spf13/cobra"
)

var jsonFmt bool

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ancp",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&jsonFmt, "json", "j", false, "output json format")
	rootCmd.PersistentFlags().String("host", "127.0.0.1", "ancpd connection address")
	rootCmd.PersistentFlags().StringP("port", "p", "50052", "ancpd connection port")

	rootCmd.AddCommand(newHealthCmd(), newDecodeCmd())
	rootCmd.Run = runRootCmd

	return rootCmd
}

func runRootCmd(cmd *cobra.Command, args []string) {
	cmd.HelpFunc()(cmd, args)
}
