package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wavesim/wavesim/internal/compiler"
)

func newValidateCmd(a *app) *cobra.Command {
	f := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Compile the given parameters and check their bounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := f.rawInput(cmd, a.cfg)
			if err != nil {
				return err
			}
			c := compiler.New()
			result := c.Validate(c.Compile(raw))
			if !result.Valid {
				fmt.Fprintf(cmd.OutOrStdout(), "Validation failed: %s\n", result.Reason)
				return errValidationFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Reason)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newOptimizeCmd(a *app) *cobra.Command {
	f := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Compile the given parameters and print the optimized record as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := f.rawInput(cmd, a.cfg)
			if err != nil {
				return err
			}
			c := compiler.New()
			params := c.Optimize(c.Compile(raw))
			out, err := yaml.Marshal(params)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	f.register(cmd)
	return cmd
}
