package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mosbookings/internal/app"
	"mosbookings/internal/domain"
)

func filterFlags(cmd *cobra.Command, category, query *string) {
	cmd.Flags().StringVar(category, "category", "All", "category chip: "+categoryNames())
	cmd.Flags().StringVarP(query, "query", "q", "", "free-text search")
}

func categoryNames() string {
	names := make([]string, len(app.Categories))
	for i, c := range app.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func printRooms(w io.Writer, rooms []domain.Room, now time.Time) error {
	return table(w, "ID\tNAME\tTYPE\tLOCATION\tPRICE\tRATING\tTODAY", func(w io.Writer) {
		for _, r := range rooms {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.1f\t%s\n",
				r.ID, r.Name, r.Type, r.Location, r.Price, r.Rating, app.AvailabilityLabel(r, now))
		}
	})
}

func (c *cli) roomsCmd() *cobra.Command {
	var category, query string
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := c.app.Services
			home := app.NewHomeScreen(cmd.Context(), svc)
			defer home.Close()
			if err := home.Load(); err != nil {
				return err
			}
			home.SetFilter(app.Filter{Category: app.ParseCategory(category), Query: query})
			l := home.View()
			out := cmd.OutOrStdout()
			if printEmpty(out, l) {
				return nil
			}
			return printRooms(out, l.Items, svc.Now())
		},
	}
	filterFlags(cmd, &category, &query)
	return cmd
}

func (c *cli) roomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "room <id>",
		Short: "Show one room with its calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := app.NewRoomDetailsScreen(cmd.Context(), c.app.Services, args[0])
			defer d.Close()
			if err := d.Load(); err != nil {
				return err
			}
			v := d.View()
			out := cmd.OutOrStdout()
			if v == nil {
				fmt.Fprintln(out, "Room not found")
				return nil
			}
			r := v.Room
			fmt.Fprintf(out, "%s (%s)\n", r.Name, v.Availability)
			fmt.Fprintf(out, "Type:       %s\n", r.Type)
			fmt.Fprintf(out, "Location:   %s\n", r.Location)
			fmt.Fprintf(out, "Price:      %.2f\n", r.Price)
			fmt.Fprintf(out, "Rating:     %.1f\n", r.Rating)
			fmt.Fprintf(out, "Amenities:  %s\n", strings.Join(r.Amenities, ", "))
			fmt.Fprintf(out, "Booked on:  %s\n", strings.Join(r.UnavailableDates, ", "))
			if r.Description != "" {
				fmt.Fprintf(out, "\n%s\n", r.Description)
			}
			return nil
		},
	}
}

func (c *cli) bookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "book <room-id> <YYYY-MM-DD>",
		Short: "Book a room for one date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := app.NewRoomDetailsScreen(cmd.Context(), c.app.Services, args[0])
			defer d.Close()
			if err := d.Load(); err != nil {
				return err
			}
			if _, err := d.Book(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booked %s on %s\n", args[0], args[1])
			return nil
		},
	}
}
