package main

import (
	"fmt"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/vhavlena/cegis-go/problems"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all := problems.All()
			width := 0
			for _, p := range all {
				width = max(width, runewidth.StringWidth(p.Name))
			}
			out := cmd.OutOrStdout()
			for _, p := range all {
				solver := "finite"
				if !p.Finite {
					solver = "z3"
				}
				fmt.Fprintf(out, "%s  %-10s %-6s %s\n",
					runewidth.FillRight(p.Name, width), p.Fairness, solver, p.Description)
			}
			return nil
		},
	}
}
