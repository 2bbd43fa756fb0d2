package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func loginCmd(c *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("PRICEGOV_PASSWORD")
			}
			if password == "" {
				return errors.New("password required: use --password or $PRICEGOV_PASSWORD")
			}
			res, err := c.api.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			c.session.Email, c.session.Role, c.session.UserID = res.User.Email, res.User.Role, res.User.ID
			if err := c.saveSession(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", res.User.Email, res.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the server session and forget local tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.session.Access != "" {
				// the local session is dropped even if the server already expired it
				_ = c.api.Logout(cmd.Context())
			}
			if err := c.clearSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func refreshCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.api.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := c.saveSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Access token refreshed")
			return nil
		},
	}
}

func whoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.api.Profile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(u.Email))
			fmt.Fprintf(out, "id:       %d\nrole:     %s\nname:     %s\nverified: %t\nserver:   %s\n",
				u.ID, u.Role, u.FullName, u.IsVerified, c.server)
			return nil
		},
	}
}
