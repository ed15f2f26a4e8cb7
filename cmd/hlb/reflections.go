package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/engagement"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
)

var (
	rfScope     string
	rfHigh      string
	rfLow       string
	rfBuffalo   string
	rfShare     []string
	rfImagePath string
	rfKind      string
)

func init() {
	rootCmd.AddCommand(reflectionsCmd, feedCmd, followUpsCmd, reactCmd, flagCmd)
	reflectionsCmd.AddCommand(reflectionsListCmd, reflectionsCreateCmd, reflectionsEditCmd, reflectionsDeleteCmd)

	reflectionsListCmd.Flags().StringVar(&rfScope, "scope", "all", `filter: "all", "self", or a friend or herd ID`)
	feedCmd.Flags().StringVar(&rfScope, "scope", "all", `filter: "all", or a friend or herd ID`)

	for _, cmd := range []*cobra.Command{reflectionsCreateCmd, reflectionsEditCmd} {
		cmd.Flags().StringVar(&rfHigh, "high", "", "the best part of the day")
		cmd.Flags().StringVar(&rfLow, "low", "", "the hardest part of the day")
		cmd.Flags().StringVar(&rfBuffalo, "buffalo", "", "something unexpected")
		cmd.Flags().StringSliceVar(&rfShare, "share", nil, `scope IDs to share with ("self", friend or herd IDs)`)
		cmd.Flags().StringVar(&rfImagePath, "image", "", "path to an image to attach (max 5 MiB)")
	}
	_ = reflectionsCreateCmd.MarkFlagRequired("high")
	_ = reflectionsCreateCmd.MarkFlagRequired("low")
	_ = reflectionsCreateCmd.MarkFlagRequired("buffalo")

	reactCmd.Flags().StringVar(&rfKind, "kind", engagement.DefaultKind, "reaction kind")
}

var reflectionsCmd = &cobra.Command{
	Use:     "reflections",
	Aliases: []string{"r"},
	Short:   "Manage your reflections",
}

var reflectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your reflections, newest first",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.adapter.Load(cmd.Context()); err != nil {
			return err
		}
		return printReflections(cmd.OutOrStdout(), s, s.adapter.View(rfScope))
	}),
}

var reflectionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a new reflection",
	Long: `Record a new reflection. It is visible only to you unless shared.

Examples:
  hlb reflections create --high "Long walk" --low "Missed the train" --buffalo "A heron on the roof"
  hlb reflections create --high ... --low ... --buffalo ... --share <friend-id> --image photo.jpg`,
	Args: cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		draft := reflection.Draft{High: rfHigh, Low: rfLow, Buffalo: rfBuffalo, SharedWith: rfShare}
		if rfImagePath != "" {
			image, err := readImage(rfImagePath)
			if err != nil {
				return err
			}
			draft.Image = image
		}
		created, err := s.adapter.Create(cmd.Context(), draft)
		if err != nil {
			return err
		}
		return printReflection(cmd.OutOrStdout(), s, created)
	}),
}

var reflectionsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the text, image or sharing of a reflection",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		var patch reflection.Patch
		flags := cmd.Flags()
		if flags.Changed("high") {
			patch.High = &rfHigh
		}
		if flags.Changed("low") {
			patch.Low = &rfLow
		}
		if flags.Changed("buffalo") {
			patch.Buffalo = &rfBuffalo
		}
		if flags.Changed("share") {
			patch.SharedWith = rfShare
		}
		if flags.Changed("image") {
			image := ""
			if rfImagePath != "" {
				var err error
				if image, err = readImage(rfImagePath); err != nil {
					return err
				}
			}
			patch.Image = &image
		}

		updated, err := s.adapter.Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		return printReflection(cmd.OutOrStdout(), s, updated)
	}),
}

var reflectionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one of your reflections",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.adapter.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	}),
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show reflections others shared with you",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.adapter.Load(cmd.Context()); err != nil {
			return err
		}
		return printReflections(cmd.OutOrStdout(), s, s.adapter.Feed(rfScope))
	}),
}

var followUpsCmd = &cobra.Command{
	Use:     "followups",
	Aliases: []string{"follow-ups"},
	Short:   "Show reflections flagged or reacted to",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.adapter.Load(cmd.Context()); err != nil {
			return err
		}
		return printReflections(cmd.OutOrStdout(), s, s.adapter.FollowUps())
	}),
}

var reactCmd = &cobra.Command{
	Use:   "react <id>",
	Short: "Toggle your curiosity reaction on a reflection",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.adapter.Load(cmd.Context()); err != nil {
			return err
		}
		updated, err := s.adapter.ToggleReaction(cmd.Context(), args[0], rfKind)
		if err != nil {
			return err
		}
		return printReflection(cmd.OutOrStdout(), s, updated)
	}),
}

var flagCmd = &cobra.Command{
	Use:   "flag <id>",
	Short: "Toggle the follow-up flag on a reflection",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.adapter.Load(cmd.Context()); err != nil {
			return err
		}
		updated, err := s.adapter.ToggleFlag(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printReflection(cmd.OutOrStdout(), s, updated)
	}),
}

// readImage loads path as a data URI.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperr.Validation("could not read image %s: %v", path, err)
	}
	if len(data) > reflection.MaxImageBytes {
		return "", apperr.Validation("image exceeds %d MiB", reflection.MaxImageBytes>>20)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", apperr.Validation("%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func printReflections(w io.Writer, s *session, rs []*models.Reflection) error {
	if outputJSON {
		if rs == nil {
			rs = []*models.Reflection{}
		}
		return printJSON(w, rs)
	}
	if len(rs) == 0 {
		fmt.Fprintln(w, "No reflections.")
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tAUTHOR\tHIGH\tLOW\tBUFFALO\tSHARED WITH\tREACTIONS\tFLAG")
	for _, r := range rs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID,
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			authorLabel(s, r),
			truncate(r.High, 30),
			truncate(r.Low, 30),
			truncate(r.Buffalo, 30),
			strings.Join(sharedLabels(s, r), ", "),
			engagement.ReactionCount(r, ""),
			flagMark(r),
		)
	}
	return tw.Flush()
}

func printReflection(w io.Writer, s *session, r *models.Reflection) error {
	if outputJSON {
		return printJSON(w, r)
	}
	fmt.Fprintf(w, "ID:          %s\n", r.ID)
	fmt.Fprintf(w, "Date:        %s\n", r.Timestamp.Local().Format("Mon 2 Jan 2006 15:04"))
	fmt.Fprintf(w, "Author:      %s\n", authorLabel(s, r))
	fmt.Fprintf(w, "High:        %s\n", r.High)
	fmt.Fprintf(w, "Low:         %s\n", r.Low)
	fmt.Fprintf(w, "Buffalo:     %s\n", r.Buffalo)
	fmt.Fprintf(w, "Shared with: %s\n", strings.Join(sharedLabels(s, r), ", "))
	if r.Image != "" {
		fmt.Fprintln(w, "Image:       attached")
	}
	for _, sum := range engagement.Summarize(r) {
		fmt.Fprintf(w, "Reactions:   %d %s\n", sum.Count, sum.Kind)
	}
	if r.IsFlaggedForFollowUp {
		fmt.Fprintln(w, "Flagged for follow-up")
	}
	return nil
}

func authorLabel(s *session, r *models.Reflection) string {
	if r.AuthorID == s.viewer {
		return "you"
	}
	if r.AuthorDisplayName != "" {
		return r.AuthorDisplayName
	}
	return s.refs.Label(r.AuthorID)
}

func sharedLabels(s *session, r *models.Reflection) []string {
	labels := make([]string, len(r.SharedWith))
	for i, id := range r.SharedWith {
		labels[i] = s.refs.Label(id)
	}
	return labels
}

func flagMark(r *models.Reflection) string {
	if r.IsFlaggedForFollowUp {
		return "*"
	}
	return ""
}

func truncate(text string, n int) string {
	runes := []rune(strings.ReplaceAll(text, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n-1]) + "…"
}
