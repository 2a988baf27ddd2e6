package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "asadazo",
	Short:         "Asadazo storefront backend",
	Long:          "Serves the Asadazo storefront API and runs operator tasks against its key-value store.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Operations
	rootCmd.AddCommand(userPromoteCmd)
	rootCmd.AddCommand(kvHealthCmd)
	rootCmd.AddCommand(exportCmd)
}
