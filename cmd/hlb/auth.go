package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/pkg/logging"
)

var (
	authEmail    string
	authName     string
	authPassword string
)

func init() {
	rootCmd.AddCommand(signupCmd, loginCmd, whoamiCmd)

	for _, cmd := range []*cobra.Command{signupCmd, loginCmd} {
		cmd.Flags().StringVar(&authEmail, "email", "", "account email")
		cmd.Flags().StringVar(&authPassword, "password", "", "password (read from stdin when omitted)")
		_ = cmd.MarkFlagRequired("email")
	}
	signupCmd.Flags().StringVar(&authName, "name", "", "display name shown next to shared reflections")
	_ = signupCmd.MarkFlagRequired("name")
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		c := newClient(cfg, logging.Setup(cfg.LogLevel))
		user, err := c.Signup(cmd.Context(), authEmail, password, authName)
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), user)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created account %s (%s). Run \"hlb login\" next.\n", user.Email, user.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Get a bearer token for the remote backend",
	Long: `Get a bearer token for the remote backend. Export it to use the server:

  export HLB_TOKEN=$(hlb login --email you@example.com --password ...)
  export HLB_BACKEND=remote`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		c := newClient(cfg, logging.Setup(cfg.LogLevel))
		tok, err := c.Login(cmd.Context(), authEmail, password)
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), tok)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity reflections are recorded under",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		w := cmd.OutOrStdout()
		if s.remote == nil {
			location := s.cfg.LocalPath
			if s.cfg.RedisURL != "" {
				location = s.cfg.RedisURL
			}
			fmt.Fprintf(w, "%s (local, %s)\n", s.viewer, location)
			return nil
		}
		me, err := s.remote.Me(cmd.Context())
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(w, me)
		}
		fmt.Fprintf(w, "%s <%s> (%s)\n", me.DisplayName, me.Email, me.ID)
		return nil
	}),
}

func readPassword(cmd *cobra.Command) (string, error) {
	if authPassword != "" {
		return authPassword, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", apperr.Validation("password is required")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
