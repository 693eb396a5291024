package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-repair/jsonrepair/repair"
	"github.com/spf13/cobra"
)

func newRepairCmd() *cobra.Command {
	var overwrite bool
	var maxDepth int

	cmd := &cobra.Command{
		Use:   "repair [file]",
		Short: "Repair a malformed JSON document",
		Long: `Repair a malformed JSON document and print strictly valid JSON to stdout.

If a file is provided, it is read and, with --overwrite, rewritten in place.
If no file is provided, the document is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source []byte
			var err error
			var filename string

			if len(args) == 0 {
				if overwrite {
					return fmt.Errorf("--overwrite requires a file argument")
				}
				source, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			} else {
				filename = args[0]
				source, err = os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
			}

			var opts []repair.Option
			if maxDepth > 0 {
				opts = append(opts, repair.WithMaxDepth(maxDepth))
			}

			repaired, err := repair.Repair(string(source), opts...)
			if err != nil {
				if repairErr, ok := err.(*repair.Error); ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s at position %d\n", repairErr.Message, repairErr.Position)
					os.Exit(1)
				}
				return err
			}

			if overwrite {
				return os.WriteFile(filename, []byte(repaired), 0644)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), repaired)
			return err
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "overwrite", "w", false, "overwrite the file in place")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 uses the package default)")

	return cmd
}
