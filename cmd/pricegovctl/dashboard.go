package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
)

func dashboardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Compliance dashboard (gov_admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.api.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, titleStyle.Render("Compliance"))
			fmt.Fprintf(out, "%d of %d active prices compliant (%.1f%%)\n",
				d.Compliance.CompliantPrices, d.Compliance.TotalPrices, d.Compliance.ComplianceRate)

			fmt.Fprintln(out, titleStyle.Render("Alerts, last 7 days"))
			fmt.Fprintf(out, "%d raised, %d unresolved\n", d.Alerts.TotalRecent, d.Alerts.Unresolved)
			severities := make([]string, 0, len(d.Alerts.BySeverity))
			for s := range d.Alerts.BySeverity {
				severities = append(severities, s)
			}
			sort.Strings(severities)
			for _, s := range severities {
				fmt.Fprintf(out, "  %-9s %d\n", s, d.Alerts.BySeverity[s])
			}

			fmt.Fprintln(out, titleStyle.Render("Top violators"))
			rows := make([][]string, 0, len(d.TopViolators))
			for _, v := range d.TopViolators {
				rows = append(rows, []string{v.RetailerName, v.District, strconv.Itoa(v.ViolationCount)})
			}
			fmt.Fprintln(out, renderTable([]string{"RETAILER", "DISTRICT", "VIOLATIONS"}, rows))

			fmt.Fprintf(out, "%d price changes in the last 24h, %d SKUs without a reference price\n",
				d.RecentActivity.PriceChanges24h, d.SystemHealth.ProductsWithoutRefPrices)
			return nil
		},
	}
}
