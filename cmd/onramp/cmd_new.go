package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onramp-dev/onramp/internal/node"
	"github.com/onramp-dev/onramp/internal/scaffold"
)

var newAPIOnly bool

// onramp new <name> [--api]
var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new app (backend + React Native frontend)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		root, err := scaffold.Project(projectRoot(), name, newAPIOnly)
		if err != nil {
			return err
		}

		node.WriteNvmrc(root)

		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Printf("  cd %s\n", name)
		fmt.Println("  onramp migrate    # set up the database")
		fmt.Println("  onramp run        # start the dev servers")
		return nil
	},
}

func init() {
	newCmd.Flags().BoolVar(&newAPIOnly, "api", false, "Create API-only app without React Native frontend")
}
