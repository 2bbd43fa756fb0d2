package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pricegov/internal/client"
	"pricegov/internal/models"
)

func complaintsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{Use: "complaints", Short: "File and manage complaints"}
	cmd.AddCommand(listComplaintsCmd(c), fileComplaintCmd(c), complaintStatusCmd(c),
		assignComplaintCmd(c), resolveComplaintCmd(c), complaintStatsCmd(c))
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printComplaint(cmd *cobra.Command, cp models.Complaint) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render(fmt.Sprintf("#%d", cp.ID)), cp.Title)
	fmt.Fprintf(out, "status: %s  priority: %s  type: %s\n", cp.Status, cp.Priority, cp.ComplaintType)
	if cp.ReportedPrice != nil {
		fmt.Fprintf(out, "reported: %s  reference: %s  difference: %s (%s)\n",
			money(cp.ReportedPrice), money(cp.ReferencePrice), money(cp.PriceDifference), percent(cp.PriceDifferencePercentage))
	}
	if cp.AssignedToName != "" {
		fmt.Fprintf(out, "assigned to: %s\n", cp.AssignedToName)
	}
}

func listComplaintsCmd(c *cli) *cobra.Command {
	var q client.ComplaintQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List complaints visible to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.api.ListComplaints(cmd.Context(), q)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(res.Results))
			for _, cp := range res.Results {
				rows = append(rows, []string{strconv.FormatInt(cp.ID, 10), cp.Title, cp.ComplaintType,
					cp.Status, cp.Priority, cp.DistrictName, cp.CreatedAt.Format("2006-01-02")})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"ID", "TITLE", "TYPE", "STATUS", "PRIORITY", "DISTRICT", "FILED"}, rows))
			fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d total", res.Count)))
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&q.Priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&q.ComplaintType, "type", "", "filter by complaint type")
	cmd.Flags().StringVar(&q.Search, "search", "", "match title or description")
	cmd.Flags().IntVar(&q.Page, "page", 0, "page number")
	return cmd
}

func fileComplaintCmd(c *cli) *cobra.Command {
	var in models.ComplaintInput
	var retailer, sku int64
	var price string
	cmd := &cobra.Command{
		Use:   "file",
		Short: "File a complaint; --price files a price violation",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.ReportedRetailerID = optionalID(cmd, "retailer", retailer)
			in.SKUID = optionalID(cmd, "sku", sku)
			file := c.api.FileComplaint
			if price != "" {
				amount, err := models.ParseMoney(price)
				if err != nil {
					return err
				}
				in.ReportedPrice = &amount
				file = c.api.FilePriceViolation
			}
			cp, err := file(cmd.Context(), in)
			if err != nil {
				return err
			}
			printComplaint(cmd, cp)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "short summary")
	cmd.Flags().StringVar(&in.Description, "description", "", "what happened")
	cmd.Flags().Int64Var(&in.DistrictID, "district", 0, "district id")
	cmd.Flags().StringVar(&in.ComplaintType, "type", "", "complaint type")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "low, medium, high or urgent")
	cmd.Flags().Int64Var(&retailer, "retailer", 0, "reported retailer id")
	cmd.Flags().Int64Var(&sku, "sku", 0, "SKU id")
	cmd.Flags().StringVar(&price, "price", "", "price you were charged")
	cmd.Flags().StringVar(&in.ContactNumber, "contact", "", "contact number")
	cmd.Flags().StringVar(&in.IncidentLocation, "location", "", "where it happened")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("district")
	return cmd
}

func complaintStatusCmd(c *cli) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "status [id] [status]",
		Short: "Move a complaint to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cp, err := c.api.UpdateComplaintStatus(cmd.Context(), id, args[1], notes)
			if err != nil {
				return err
			}
			printComplaint(cmd, cp)
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "investigation notes")
	return cmd
}

func assignComplaintCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "assign [id] [user-id]",
		Short: "Assign a complaint to a government staff member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			assignee, err := parseID(args[1])
			if err != nil {
				return err
			}
			cp, err := c.api.AssignComplaint(cmd.Context(), id, assignee)
			if err != nil {
				return err
			}
			printComplaint(cmd, cp)
			return nil
		},
	}
}

func resolveComplaintCmd(c *cli) *cobra.Command {
	var req models.ResolveRequest
	cmd := &cobra.Command{
		Use:   "resolve [id]",
		Short: "Resolve a complaint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cp, err := c.api.ResolveComplaint(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			printComplaint(cmd, cp)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.ResolutionAction, "action", "", "action taken")
	cmd.Flags().StringVar(&req.ResolutionReport, "report", "", "resolution report")
	cmd.Flags().StringVar(&req.ResolutionNotes, "notes", "", "resolution notes")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

func complaintStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Complaint counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.api.ComplaintStatistics(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"TOTAL", "PENDING", "UNDER REVIEW", "RESOLVED", "PRICE VIOLATIONS"},
				[][]string{{strconv.Itoa(s.TotalComplaints), strconv.Itoa(s.PendingComplaints), strconv.Itoa(s.UnderReview),
					strconv.Itoa(s.ResolvedComplaints), strconv.Itoa(s.PriceViolations)}}))
			return nil
		},
	}
}
