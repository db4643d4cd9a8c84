package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mosbookings/internal/app"
	"mosbookings/internal/domain"
)

func (c *cli) bookingsCmd() *cobra.Command {
	var category, query string
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.NewMyBookingsScreen(cmd.Context(), c.app.Services)
			defer s.Close()
			if err := s.Load(); err != nil {
				return err
			}
			s.SetFilter(app.Filter{Category: app.ParseCategory(category), Query: query})
			l := s.View()
			out := cmd.OutOrStdout()
			if printEmpty(out, l) {
				return nil
			}
			return table(out, "ROOM\tNAME\tTYPE\tLOCATION\tDATE\tPRICE", func(w io.Writer) {
				for _, b := range l.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						b.RoomID, b.RoomName, b.RoomType, b.Location, b.Date, b.Price)
				}
			})
		},
	}
	filterFlags(cmd, &category, &query)
	return cmd
}

func (c *cli) cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <room-id> <YYYY-MM-DD>",
		Short: "Cancel one of your bookings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.ParseDate(args[1], nil); err != nil {
				return err
			}
			s := app.NewMyBookingsScreen(cmd.Context(), c.app.Services)
			defer s.Close()
			if err := s.Cancel(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s on %s\n", args[0], args[1])
			return nil
		},
	}
}

func (c *cli) adminCmd() *cobra.Command {
	admin := &cobra.Command{Use: "admin", Short: "Administrator screens"}
	admin.AddCommand(c.adminBookingsCmd(), c.adminAvailableCmd(), c.adminUpdateCmd(), c.adminDeleteCmd())
	return admin
}

func (c *cli) adminBookingsCmd() *cobra.Command {
	var rng domain.DateRange
	var query string
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List every booking, optionally within a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.NewAdminBookingsScreen(cmd.Context(), c.app.Services)
			defer s.Close()
			if err := s.Load(rng); err != nil {
				return err
			}
			s.Search(query)
			l := s.View()
			out := cmd.OutOrStdout()
			if printEmpty(out, l) {
				return nil
			}
			return table(out, "ROOM\tNAME\tDATE\tUSER", func(w io.Writer) {
				for _, b := range l.Items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.RoomID, b.RoomName, b.Date, b.User)
				}
			})
		},
	}
	cmd.Flags().StringVar(&rng.Start, "start", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&rng.End, "end", "", "last date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&query, "query", "q", "", "room name or user")
	return cmd
}

func (c *cli) adminAvailableCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "available",
		Short: "List rooms free today",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Services.Sessions.RequireAdmin(cmd.Context()); err != nil {
				return err
			}
			s := app.NewAvailableScreen(cmd.Context(), c.app.Services)
			defer s.Close()
			if err := s.Load(); err != nil {
				return err
			}
			s.Search(query)
			l := s.View()
			out := cmd.OutOrStdout()
			if printEmpty(out, l) {
				return nil
			}
			return printRooms(out, l.Items, c.app.Services.Now())
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "room name, type or location")
	return cmd
}

func (c *cli) adminUpdateCmd() *cobra.Command {
	var (
		name, typ, location, description string
		price, rating                    float64
		amenities, unavailable           []string
	)
	cmd := &cobra.Command{
		Use:   "update-room <id>",
		Short: "Change fields of an existing room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			var e app.RoomEdit
			if f.Changed("name") {
				e.Name = &name
			}
			if f.Changed("type") {
				e.Type = &typ
			}
			if f.Changed("location") {
				e.Location = &location
			}
			if f.Changed("description") {
				e.Description = &description
			}
			if f.Changed("price") {
				e.Price = &price
			}
			if f.Changed("rating") {
				e.Rating = &rating
			}
			if f.Changed("amenities") {
				e.Amenities = amenities
			}
			if f.Changed("unavailable") {
				e.UnavailableDates = unavailable
			}
			room, err := c.app.Services.Repo.EditRoom(cmd.Context(), args[0], e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated room %s (%s)\n", room.ID, room.Name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "room name")
	f.StringVar(&typ, "type", "", "room type")
	f.StringVar(&location, "location", "", "room location")
	f.StringVar(&description, "description", "", "description")
	f.Float64Var(&price, "price", 0, "price per night")
	f.Float64Var(&rating, "rating", 0, "rating from 0 to 5")
	f.StringSliceVar(&amenities, "amenities", nil, "comma-separated amenities, replaces the list")
	f.StringSliceVar(&unavailable, "unavailable", nil, "comma-separated YYYY-MM-DD dates, replaces the calendar")
	return cmd
}

func (c *cli) adminDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-room <id>",
		Short: "Delete a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.app.Services.Repo.DeleteRoom(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted room %s\n", args[0])
			return nil
		},
	}
}
