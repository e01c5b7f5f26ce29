package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jihoonbyun/loandraft/internal/parser"
	"github.com/jihoonbyun/loandraft/internal/reconcile"
)

func main() {
	root := &cobra.Command{
		Use:           "loandraft",
		Short:         "Loan agreement structure tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(parseCmd(), reconcileCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// parseCmd parses a reference agreement file into its article/clause
// structure and prints it as JSON.
func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse an agreement file into articles and clauses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := parser.ParseFile(f, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
}

// reconcileCmd recovers clause records from a saved model response.
func reconcileCmd() *cobra.Command {
	var expect int
	var plain bool

	cmd := &cobra.Command{
		Use:   "reconcile <file>",
		Short: "Recover clause records from a model response file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if plain {
				fmt.Fprintln(cmd.OutOrStdout(), reconcile.ExtractPlainText(string(data)))
				return nil
			}

			clauses, tier := reconcile.Reconcile(string(data))
			if expect > 0 && len(clauses) != expect {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"warning: recovered %d clauses, expected %d\n", len(clauses), expect)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"tier":    tier.String(),
				"clauses": clauses,
			})
		},
	}
	cmd.Flags().IntVar(&expect, "expect", 0, "expected clause count; mismatches print a warning")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the recovered plain text instead of clause records")
	return cmd
}
