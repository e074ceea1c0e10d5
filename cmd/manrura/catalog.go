package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/terra-clan/manrura/internal/catalog"
)

func catalogCmd() *cobra.Command {
	var (
		path       string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the standards catalog",
		Long: `Print the standards, elements and assessment points with their totals.

Without --path the embedded MANRURA catalog is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}

			if outputJSON {
				doc, err := cat.JSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), doc)
				return err
			}

			printCatalog(cmd.OutOrStdout(), cat)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Catalog YAML file or directory")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output the catalog document as JSON")

	return cmd
}

// printCatalog writes the standards tree followed by the totals
func printCatalog(w io.Writer, cat *catalog.Catalog) {
	for _, std := range cat.Standards() {
		fmt.Fprintf(w, "%s  %s\n", std.ID, std.Title)
		for _, el := range std.Elements {
			fmt.Fprintf(w, "  %s  %s\n", el.ID, el.Title)
			for _, p := range el.Points {
				fmt.Fprintf(w, "    %s  %s\n", p.ID, p.Description)
			}
		}
	}

	fmt.Fprintf(w, "\n%d standards, %d points, max score %d\n",
		len(cat.Standards()), cat.PointCount(), cat.MaxScore())
}
