package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandialabs/TInCuP/internal/catalog"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the predefined operation patterns",
	Long: `Patterns prints every predefined operation shape usable as the
'operation_type' key of a spec, with its argument shorthand and an example.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range catalog.All() {
			fmt.Printf("%s\n", p.Name)
			fmt.Printf("  %s\n", p.Description)
			fmt.Printf("  args:    [%s]\n", strings.Join(p.Args, ", "))
			fmt.Printf("  returns: %s\n", p.ReturnConstraint)
			if p.Example != "" {
				fmt.Printf("  example: %s\n", p.Example)
			}
			fmt.Println()
		}
		return nil
	},
}
