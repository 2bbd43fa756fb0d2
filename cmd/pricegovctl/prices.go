package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pricegov/internal/client"
	"pricegov/internal/models"
)

func optionalID(cmd *cobra.Command, name string, v int64) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &v
}

func pricesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "prices", Short: "Query, validate and publish prices"}
	cmd.AddCommand(farmerPricesCmd(c), validatePriceCmd(c), publishPriceCmd(c), listPricesCmd(c))
	return cmd
}

func farmerPricesCmd(c *cli) *cobra.Command {
	var sku, district int64
	cmd := &cobra.Command{
		Use:   "farmer",
		Short: "Reference price and cheapest compliant retailers",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.api.FarmerPrices(cmd.Context(), sku, district)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(view.SKU.DisplayName))
			fmt.Fprintf(out, "Reference price: %s\n", money(view.ReferencePrice))
			rows := make([][]string, 0, len(view.TopRetailerPrices))
			for _, p := range view.TopRetailerPrices {
				rows = append(rows, []string{p.RetailerName, p.Price.String(), p.EffectiveFrom.Format("2006-01-02")})
			}
			fmt.Fprintln(out, renderTable([]string{"RETAILER", "PRICE", "SINCE"}, rows))
			return nil
		},
	}
	cmd.Flags().Int64Var(&sku, "sku", 0, "SKU id")
	cmd.Flags().Int64Var(&district, "district", 0, "district id")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("district")
	return cmd
}

func validatePriceCmd(c *cli) *cobra.Command {
	var sku, district int64
	var price string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a price against the markup ceiling",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := models.ParseMoney(price)
			if err != nil {
				return err
			}
			res, err := c.api.ValidatePrice(cmd.Context(), models.ValidatePriceRequest{
				SKUID: sku, DistrictID: optionalID(cmd, "district", district), Price: amount,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Valid {
				fmt.Fprintln(out, okStyle.Render("VALID"))
			} else {
				fmt.Fprintln(out, errorStyle.Render("NOT VALID"))
			}
			fmt.Fprintln(out, res.Reason)
			fmt.Fprintf(out, "Reference: %s  Allowed max: %s  Markup: %s\n",
				money(res.ReferencePrice), money(res.AllowedMax), percent(res.MarkupPercentage))
			return nil
		},
	}
	cmd.Flags().Int64Var(&sku, "sku", 0, "SKU id")
	cmd.Flags().Int64Var(&district, "district", 0, "district id (retailers default to their own)")
	cmd.Flags().StringVar(&price, "price", "", "price, e.g. 1080.00")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func publishPriceCmd(c *cli) *cobra.Command {
	var sku int64
	var price string
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish your shelf price for a SKU",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := models.ParseMoney(price)
			if err != nil {
				return err
			}
			p, err := c.api.PublishPrice(cmd.Context(), models.PublishPriceRequest{SKUID: sku, Price: amount})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Published #%d %s at %s: %s\n", p.ID, p.SKUName, p.Price, severityLabel(p.ViolationSeverity))
			fmt.Fprintln(out, mutedStyle.Render(p.ValidationReason))
			return nil
		},
	}
	cmd.Flags().Int64Var(&sku, "sku", 0, "SKU id")
	cmd.Flags().StringVar(&price, "price", "", "price, e.g. 1080.00")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func listPricesCmd(c *cli) *cobra.Command {
	var sku, district, retailer int64
	var compliant bool
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := client.PublishedQuery{
				SKUID:      optionalID(cmd, "sku", sku),
				DistrictID: optionalID(cmd, "district", district),
				RetailerID: optionalID(cmd, "retailer", retailer),
				Page:       page,
			}
			if cmd.Flags().Changed("compliant") {
				q.Compliant = &compliant
			}
			res, err := c.api.ListPublishedPrices(cmd.Context(), q)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(res.Results))
			for _, p := range res.Results {
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10), p.RetailerName, p.SKUCode, p.DistrictName,
					p.Price.String(), money(p.ReferencePrice), percent(p.MarkupPercentage), severityLabel(p.ViolationSeverity),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"ID", "RETAILER", "SKU", "DISTRICT", "PRICE", "REFERENCE", "MARKUP", "STATUS"}, rows))
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d total", res.Count)))
			return nil
		},
	}
	cmd.Flags().Int64Var(&sku, "sku", 0, "filter by SKU id")
	cmd.Flags().Int64Var(&district, "district", 0, "filter by district id")
	cmd.Flags().Int64Var(&retailer, "retailer", 0, "filter by retailer id")
	cmd.Flags().BoolVar(&compliant, "compliant", false, "filter by compliance")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	return cmd
}
