// Command pmctl signs in to a projecthub server and keeps the session on
// disk for later runs.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/iliyamo/projecthub/internal/client"
)

type options struct {
	apiURL      string
	sessionPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "pmctl",
		Short:        "projecthub command line client",
		SilenceUsage: true,
	}

	apiDefault := os.Getenv("PROJECTHUB_API")
	if apiDefault == "" {
		apiDefault = "http://localhost:8080"
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", apiDefault, "server base URL (PROJECTHUB_API)")
	cmd.PersistentFlags().StringVar(&opts.sessionPath, "session", "", "session file (default: user config dir)")

	cmd.AddCommand(
		loginCmd(opts),
		registerCmd(opts),
		logoutCmd(opts),
		refreshCmd(opts),
		whoamiCmd(opts),
		canCmd(opts),
	)
	return cmd
}

func (o *options) session() (*client.Session, error) {
	path := o.sessionPath
	if path == "" {
		p, err := client.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
		path = p
	}
	return client.New(o.apiURL, client.FileStore{Path: path}), nil
}

// report prints a Result and turns a failure into a command error.
func report(cmd *cobra.Command, r client.Result) error {
	if !r.Success {
		return errors.New(r.Message)
	}
	if r.Message != "" {
		cmd.Println(r.Message)
	}
	return nil
}

func loginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			return report(cmd, s.Login(cmd.Context(), email, password))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd(opts *options) *cobra.Command {
	var r client.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			return report(cmd, s.Register(cmd.Context(), r))
		},
	}
	cmd.Flags().StringVar(&r.Email, "email", "", "account email")
	cmd.Flags().StringVar(&r.Password, "password", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&r.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&r.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&r.UserType, "type", "", "individual or company")
	cmd.Flags().StringVar(&r.Timezone, "timezone", "", "IANA timezone, e.g. Europe/Berlin")
	for _, f := range []string{"email", "password", "first-name", "last-name"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			s.Logout()
			cmd.Println("Logged out")
			return nil
		},
	}
}

func refreshCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a fresh one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			if !s.Restore(cmd.Context()) {
				return errors.New("not logged in")
			}
			return report(cmd, s.Refresh(cmd.Context()))
		},
	}
}

func whoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			if !s.Restore(cmd.Context()) {
				return errors.New("not logged in")
			}
			id, _ := s.Identity()
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(id)
		},
	}
}

func canCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "can <permission>",
		Short: "Check a permission against the stored identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			s.Restore(cmd.Context())
			if s.HasPermission(args[0]) {
				cmd.Println("yes")
				return nil
			}
			cmd.Println("no")
			return fmt.Errorf("permission %q denied", args[0])
		},
	}
}
