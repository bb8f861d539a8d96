package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gaiolawatch %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}
