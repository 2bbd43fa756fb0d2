package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pricegov/internal/models"
)

func districtsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "districts", Short: "Browse districts"}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List active districts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.api.ListDistricts(cmd.Context(), search)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(ds))
			for _, d := range ds {
				rows = append(rows, []string{strconv.FormatInt(d.ID, 10), d.Code, d.FullPath, strconv.Itoa(d.ChildrenCount)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "CODE", "PATH", "CHILDREN"}, rows))
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "match name or code")

	tree := &cobra.Command{
		Use:   "tree",
		Short: "Print the district hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := c.api.DistrictTree(cmd.Context())
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), nodes, 0)
			return nil
		},
	}

	cmd.AddCommand(list, tree)
	return cmd
}

func printTree(w io.Writer, nodes []models.DistrictNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), n.Name, mutedStyle.Render(fmt.Sprintf("[%s #%d]", n.Code, n.ID)))
		printTree(w, n.Children, depth+1)
	}
}

func skusCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "skus", Short: "Browse fertilizer SKUs"}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List active SKUs",
		RunE: func(cmd *cobra.Command, args []string) error {
			skus, err := c.api.ListSKUs(cmd.Context(), search)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(skus))
			for _, s := range skus {
				rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Code, s.DisplayName})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "CODE", "PRODUCT"}, rows))
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "match code, name or manufacturer")

	cmd.AddCommand(list)
	return cmd
}
