package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

var (
	herdName        string
	herdDescription string
)

func init() {
	rootCmd.AddCommand(herdsCmd)
	herdsCmd.AddCommand(herdsListCmd, herdsShowCmd, herdsCreateCmd, herdsEditCmd, herdsDeleteCmd,
		herdsAddMemberCmd, herdsRemoveMemberCmd, herdsPullCmd)

	herdsCreateCmd.Flags().StringVar(&herdName, "name", "", "herd name")
	herdsCreateCmd.Flags().StringVar(&herdDescription, "description", "", "what the herd is for")
	_ = herdsCreateCmd.MarkFlagRequired("name")

	herdsEditCmd.Flags().StringVar(&herdName, "name", "", "new name")
	herdsEditCmd.Flags().StringVar(&herdDescription, "description", "", "new description")
}

var herdsCmd = &cobra.Command{
	Use:   "herds",
	Short: "Manage sharing groups",
	Long: `Herds are named groups you can share reflections with.

Managing herds needs the remote backend. With the local backend, "hlb herds
pull" copies your herds from the server so reflections can be scoped to them
offline.`,
}

var herdsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the herds you belong to",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		herds := s.refs.Herds()
		w := cmd.OutOrStdout()
		if outputJSON {
			if herds == nil {
				herds = []models.Herd{}
			}
			return printJSON(w, herds)
		}
		if len(herds) == 0 {
			fmt.Fprintln(w, "No herds.")
			return nil
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tNAME\tMEMBERS\tROLE")
		for _, h := range herds {
			role := ""
			if m, ok := h.Member(s.viewer); ok {
				role = string(m.Role)
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", h.ID, h.Name, len(h.Members), role)
		}
		return tw.Flush()
	}),
}

var herdsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a herd and its members",
	Args:  cobra.ExactArgs(1),
	RunE: withRemote(func(cmd *cobra.Command, args []string, s *session) (*models.Herd, error) {
		return s.remote.GetHerd(cmd.Context(), args[0])
	}),
}

var herdsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a herd; you become its owner",
	Args:  cobra.NoArgs,
	RunE: withRemote(func(cmd *cobra.Command, args []string, s *session) (*models.Herd, error) {
		return s.remote.CreateHerd(cmd.Context(), herdName, optional(cmd, "description", herdDescription))
	}),
}

var herdsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Rename a herd or change its description (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: withRemote(func(cmd *cobra.Command, args []string, s *session) (*models.Herd, error) {
		return s.remote.UpdateHerd(cmd.Context(), args[0], herdName, optional(cmd, "description", herdDescription))
	}),
}

var herdsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a herd (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := requireRemote(s); err != nil {
			return err
		}
		if err := s.remote.DeleteHerd(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted herd %s\n", args[0])
		return nil
	}),
}

var herdsAddMemberCmd = &cobra.Command{
	Use:   "add-member <herd-id> <email>",
	Short: "Add a registered user to a herd (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: withRemote(func(cmd *cobra.Command, args []string, s *session) (*models.Herd, error) {
		return s.remote.AddHerdMember(cmd.Context(), args[0], args[1])
	}),
}

var herdsRemoveMemberCmd = &cobra.Command{
	Use:   "remove-member <herd-id> <user-id>",
	Short: "Remove a member, or leave a herd by passing your own ID",
	Args:  cobra.ExactArgs(2),
	RunE: withRemote(func(cmd *cobra.Command, args []string, s *session) (*models.Herd, error) {
		return s.remote.RemoveHerdMember(cmd.Context(), args[0], args[1])
	}),
}

var herdsPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Copy your herds from the server into the local store",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if s.local == nil {
			return apperr.Validation("herds pull only applies to the local backend")
		}
		if s.cfg.Token == "" {
			return apperr.Unauthorized("not logged in: run \"hlb login\" and set HLB_TOKEN")
		}
		herds, err := newClient(s.cfg, s.logger).ListHerds(cmd.Context())
		if err != nil {
			return err
		}
		if err := s.local.SaveHerds(cmd.Context(), herds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d herds\n", len(herds))
		return nil
	}),
}

func requireRemote(s *session) error {
	if s.remote == nil {
		return apperr.Validation("managing herds needs the remote backend (--backend remote)")
	}
	return nil
}

// withRemote runs a herd mutation on the server and prints the result.
func withRemote(fn func(cmd *cobra.Command, args []string, s *session) (*models.Herd, error)) func(*cobra.Command, []string) error {
	return withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := requireRemote(s); err != nil {
			return err
		}
		herd, err := fn(cmd, args, s)
		if err != nil {
			return err
		}
		return printHerd(cmd.OutOrStdout(), herd)
	})
}

func optional(cmd *cobra.Command, flag, value string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	return &value
}

func printHerd(w io.Writer, h *models.Herd) error {
	if outputJSON {
		return printJSON(w, h)
	}
	fmt.Fprintf(w, "%s (%s)\n", h.Name, h.ID)
	if h.Description != "" {
		fmt.Fprintf(w, "%s\n", h.Description)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "USER ID\tNAME\tEMAIL\tROLE")
	for _, m := range h.Members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.UserID, m.DisplayName, m.Email, m.Role)
	}
	return tw.Flush()
}
