package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asadazo/asadazo/internal/kernel"
	"github.com/asadazo/asadazo/internal/server"
	"github.com/asadazo/asadazo/pkg/kv"
)

// asadazo serve: start the HTTP and gRPC servers.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server (and gRPC health when GRPC_PORT is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// asadazo route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := kernel.Build(kernel.Options{Store: kv.NewMemoryStore(), Inline: true})
		if err != nil {
			return err
		}
		defer app.Close()

		infos := app.Router.Routes()
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
