package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"mosbookings/internal/domain"
)

// password prefers the flag, then MOS_PASSWORD.
func password(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("MOS_PASSWORD")
}

func (c *cli) loginCmd() *cobra.Command {
	var email, pass string
	var admin bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := domain.Credentials{Email: email, Password: password(pass)}
			login := c.app.Services.Sessions.Login
			if admin {
				login = c.app.Services.Sessions.AdminLogin
			}
			sess, err := login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&pass, "password", "", "account password (default $MOS_PASSWORD)")
	cmd.Flags().BoolVar(&admin, "admin", false, "require the admin role")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var r domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			r.Password = password(r.Password)
			if r.ConfirmPassword == "" {
				r.ConfirmPassword = r.Password
			}
			sess, loggedIn, err := c.app.Services.Sessions.Register(cmd.Context(), r)
			if err != nil {
				return err
			}
			if !loggedIn {
				fmt.Fprintln(cmd.OutOrStdout(), "Registration successful. Please log in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", sess.Label())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&r.Name, "name", "", "full name")
	f.StringVar(&r.Email, "email", "", "email")
	f.StringVar(&r.Phone, "phone", "", "phone number")
	f.StringVar(&r.Password, "password", "", "password (default $MOS_PASSWORD)")
	f.StringVar(&r.ConfirmPassword, "confirm", "", "password confirmation (default the password)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Services.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.app.Services.Sessions.Require(cmd.Context())
			if err != nil {
				return err
			}
			u := sess.User
			return table(cmd.OutOrStdout(), "NAME\tEMAIL\tROLE\tID", func(w io.Writer) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Name, u.Email, u.Role, u.ID)
			})
		},
	}
}

func (c *cli) prefsCmd() *cobra.Command {
	var notifications, dark string
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the notification and dark mode toggles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.app.Services.Sessions.Preferences(ctx)
			if err != nil {
				return err
			}
			changed := false
			for _, t := range []struct {
				val string
				dst *bool
			}{{notifications, &p.Notifications}, {dark, &p.DarkMode}} {
				if t.val == "" {
					continue
				}
				b, err := strconv.ParseBool(t.val)
				if err != nil {
					return fmt.Errorf("not a boolean: %q", t.val)
				}
				*t.dst, changed = b, true
			}
			if changed {
				if err := c.app.Services.Sessions.SetPreferences(ctx, p); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "notifications=%t dark_mode=%t\n", p.Notifications, p.DarkMode)
			return nil
		},
	}
	cmd.Flags().StringVar(&notifications, "notifications", "", "true or false")
	cmd.Flags().StringVar(&dark, "dark-mode", "", "true or false")
	return cmd
}
