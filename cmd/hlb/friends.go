package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/highlowbuffalo/internal/models"
)

func init() {
	rootCmd.AddCommand(friendsCmd)
	friendsCmd.AddCommand(friendsListCmd, friendsAddCmd, friendsRemoveCmd)
}

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Manage who you can share reflections with",
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your friends",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		friends := s.refs.Friends()
		w := cmd.OutOrStdout()
		if outputJSON {
			if friends == nil {
				friends = []models.Friend{}
			}
			return printJSON(w, friends)
		}
		if len(friends) == 0 {
			fmt.Fprintln(w, "No friends yet. Add one with \"hlb friends add <email>\".")
			return nil
		}
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
		for _, f := range friends {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", f.ID, f.Label(), f.Email)
		}
		return tw.Flush()
	}),
}

var friendsAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Add a friend by email",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		friend, err := s.dir.AddFriend(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if outputJSON {
			return printJSON(cmd.OutOrStdout(), friend)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", friend.Label(), friend.ID)
		return nil
	}),
}

var friendsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a friend",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.dir.RemoveFriend(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	}),
}
