package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mosbookings/internal/app"
)

func (c *cli) reportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show booking statistics, optionally exporting them to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s := app.NewReportsScreen(ctx, c.app.Services)
			defer s.Close()
			if err := s.Load(); err != nil {
				return err
			}
			v := s.View()
			out := cmd.OutOrStdout()
			if v.Empty {
				fmt.Fprintln(out, v.Message)
			}
			sum := s.Summary()
			if sum == nil {
				return nil
			}
			fmt.Fprintf(out, "Report for %s, generated %s\n\n", sum.ReportFor, sum.GeneratedAt.Format("02/01/2006 15:04"))
			if err := table(out, "METRIC\tVALUE", func(w io.Writer) {
				for _, it := range v.Items {
					fmt.Fprintf(w, "%s\t%s\n", it.Label, it.Value)
				}
			}); err != nil {
				return err
			}
			if len(sum.ByRoomType) > 0 {
				fmt.Fprintln(out)
				if err := table(out, "ROOM TYPE\tBOOKINGS", func(w io.Writer) {
					for _, ct := range sum.ByRoomType {
						fmt.Fprintf(w, "%s\t%d\n", ct.Label, ct.Count)
					}
				}); err != nil {
					return err
				}
			}
			if format == "" {
				return nil
			}
			sess, err := c.app.Services.Sessions.Require(ctx)
			if err != nil {
				return err
			}
			rec, err := c.app.Exports.Export(ctx, *sum, sess, strings.ToLower(format))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSaved %s\n", rec.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "export", "", "also write the report as pdf or xlsx")
	cmd.AddCommand(c.reportHistoryCmd())
	return cmd
}

func (c *cli) reportHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently exported report files",
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := c.app.Exports.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No exports recorded")
				return nil
			}
			return table(out, "ID\tFORMAT\tGENERATED\tTOTAL\tOWN\tPATH", func(w io.Writer) {
				for _, r := range recs {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n", r.ID, r.Format,
						r.GeneratedAt.Format("02/01/2006 15:04"), r.TotalBookings, r.OwnBookings, r.Path)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	return cmd
}
