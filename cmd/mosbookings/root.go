package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mosbookings/internal/app"
	"mosbookings/internal/bootstrap"
	"mosbookings/internal/domain"
)

// cli carries the lazily built application into every command.
type cli struct {
	build func(context.Context) (*bootstrap.App, error)
	app   *bootstrap.App
}

func newRootCmd(build func(context.Context) (*bootstrap.App, error)) *cobra.Command {
	c := &cli{build: build}
	root := &cobra.Command{
		Use:           "mosbookings",
		Short:         "Browse rooms, book dates and review bookings on a MosBookings backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if offline(cmd) {
				return nil
			}
			a, err := c.build(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error: "+err.Error())
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app != nil {
				return c.app.Close()
			}
			return nil
		},
	}
	root.AddCommand(
		c.loginCmd(), c.registerCmd(), c.logoutCmd(), c.whoamiCmd(),
		c.roomsCmd(), c.roomCmd(), c.bookCmd(),
		c.bookingsCmd(), c.cancelCmd(),
		c.adminCmd(), c.reportCmd(), c.prefsCmd(),
	)
	wrapErrors(root)
	return root
}

// offline reports commands that never touch the backend or the stores.
func offline(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if n := cmd.Name(); n == "help" || n == "completion" {
			return true
		}
	}
	return false
}

// wrapErrors prints a user-facing message for every command's error. Backend
// failures share one generic message; details go to the log.
func wrapErrors(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), userMessage(err))
			}
			return err
		}
	}
	for _, sub := range cmd.Commands() {
		wrapErrors(sub)
	}
}

func userMessage(err error) string {
	var ve *app.ValidationError
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return "You are not logged in. Run `mosbookings login` first."
	case errors.Is(err, domain.ErrNotAdmin):
		return "Access denied. Admin privileges required."
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, app.ErrBookingRejected), errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, app.ErrMissingCredentials), errors.Is(err, app.ErrAdminRegistration),
		errors.Is(err, app.ErrUnknownFormat), errors.Is(err, app.ErrEmptyEdit):
		return err.Error()
	case domain.KindOf(err) != 0:
		return "Operation failed. Please try again."
	default:
		return "Error: " + err.Error()
	}
}

func table(w io.Writer, header string, rows func(w io.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	return tw.Flush()
}

func printEmpty[T any](w io.Writer, l app.Listing[T]) bool {
	if l.Empty {
		fmt.Fprintln(w, l.Message)
		return true
	}
	return false
}
