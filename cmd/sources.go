package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List and validate the source profile registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tENABLED\tJSONLD\tOG\tSELECTORS\tHEURISTIC\tLLM\tJSONLD_ONLY")
		for _, name := range reg.Names() {
			p, _ := reg.Get(name)
			d := p.Detail
			fmt.Fprintf(w, "%s\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
				p.Name, d.Enabled, d.UseJSONLD, d.UseOpenGraph, !d.Selectors.Empty(), d.UseHeuristic, d.UseLLM, d.JSONLDOnly)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
