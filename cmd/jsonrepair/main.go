package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "jsonrepair",
		Short:   "Repair almost-JSON into strictly valid JSON",
		Version: "0.1.0",
	}

	rootCmd.AddCommand(newRepairCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
