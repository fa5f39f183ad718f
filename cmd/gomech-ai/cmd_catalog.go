package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DeyvidJesus/gomech-ai-service/internal/actions"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the action catalog",
	RunE:  runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	catalog, err := actions.DefaultCatalog()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACTION\tMETHOD\tENDPOINT\tREQUIRED\tAUTO")
	for _, c := range catalog.Commands() {
		auto := ""
		if c.AutoExecute {
			auto = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Method, c.Endpoint, strings.Join(c.Required, ","), auto)
	}
	return w.Flush()
}
