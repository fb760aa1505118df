package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var VERSION = "UNKNOWN"

func main() {
	rootCmd := &cobra.Command{
		Use:          "polynavmesh",
		Short:        "constrained Delaunay navmesh builder",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		BuildCmd(),
		InspectCmd(),
		VersionCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), VERSION)
		},
	}
}
