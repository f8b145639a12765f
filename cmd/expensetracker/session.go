package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"expensetracker/internal/cli"
)

func loginCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Store the signed-in identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.TrimSpace(args[0])
			if email == "" {
				return errors.New("email is required")
			}

			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Gate.Login(cmd.Context(), email, name); err != nil {
				return err
			}
			display, err := a.Gate.UserName(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", display, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and erase every transaction and category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Gate.Logout(cmd.Context()); err != nil {
				return err
			}
			if a.Broker != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out, wipe requested")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out, ledger wiped")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cli.OpenApp(cmd.Context(), cli.AppOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			in, err := a.Gate.IsLoggedIn(cmd.Context())
			if err != nil {
				return err
			}
			if !in {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			email, err := a.Gate.UserEmail(cmd.Context())
			if err != nil {
				return err
			}
			name, err := a.Gate.UserName(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", name, email)
			return nil
		},
	}
}
