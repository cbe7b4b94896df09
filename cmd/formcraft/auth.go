package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shubham-ralli/form-b/internal/apiclient"
	"github.com/shubham-ralli/form-b/internal/formscache"
)

func newLoginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = prompt(cmd, "Email: ")
			}
			if password == "" {
				password = os.Getenv("FORMCRAFT_PASSWORD")
			}
			if password == "" {
				password = prompt(cmd, "Password: ")
			}
			client := apiclient.New(viper.GetString("api_url"))
			res, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			state, err := openState()
			if err != nil {
				return err
			}
			if err := state.Set(keyToken, res.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s plan)\n", res.User.Email, res.User.Plan)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or FORMCRAFT_PASSWORD)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear cached data",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession()
			if errors.Is(err, errNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			if err := s.client.Logout(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: server logout failed: %v\n", err)
			}
			s.forms.Close()
			if err := s.state.Remove(keyToken, formscache.KeyPreferences); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func prompt(cmd *cobra.Command, label string) string {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(line)
}
