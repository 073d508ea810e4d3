package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wavesim/wavesim/internal/generator"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the generator version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "wavesim %s\n", generator.Version)
			return nil
		},
	}
}
