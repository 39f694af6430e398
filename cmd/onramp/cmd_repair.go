package main

import (
	"github.com/spf13/cobra"

	"github.com/onramp-dev/onramp/internal/node"
)

// onramp repair:ios
var repairIOSCmd = &cobra.Command{
	Use:   "repair:ios",
	Short: "Clear derived iOS build state and reinstall pods",
	RunE: func(cmd *cobra.Command, args []string) error {
		node.RepairIOS(cmd.Context(), buildDir())
		return nil
	},
}
