package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/service"
)

func init() {
	rootCmd.AddCommand(settingsCmd, statusCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsCadenceCmd)
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change your reminder settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your settings",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		return printSettings(cmd, s.refs.Settings())
	}),
}

var settingsCadenceCmd = &cobra.Command{
	Use:       "cadence <daily|weekly|paused>",
	Short:     "Set how often you are reminded to reflect",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(models.CadenceDaily), string(models.CadenceWeekly), string(models.CadencePaused)},
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		cadence := models.Cadence(args[0])
		if !cadence.Valid() {
			return apperr.Validation("cadence must be daily, weekly or paused")
		}
		settings := s.refs.Settings()
		settings.NotificationCadence = cadence
		saved, err := s.dir.SaveSettings(cmd.Context(), settings)
		if err != nil {
			return err
		}
		return printSettings(cmd, saved)
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether it is time to reflect",
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		status, err := reminderStatus(cmd.Context(), s)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if outputJSON {
			return printJSON(w, status)
		}
		if status.Message == "" {
			fmt.Fprintln(w, "You're all caught up.")
			return nil
		}
		fmt.Fprintln(w, status.Message)
		return nil
	}),
}

// reminderStatus asks the server, or applies the same rule to the local store.
func reminderStatus(ctx context.Context, s *session) (service.ReminderStatus, error) {
	if s.remote != nil {
		return s.remote.NotificationStatus(ctx)
	}
	own, err := s.local.ListReflections(ctx)
	if err != nil {
		return service.ReminderStatus{}, err
	}
	return service.EvaluateReminder(s.refs.Settings().NotificationCadence, time.Now(), func(since time.Time) (int, error) {
		n := 0
		for _, r := range own {
			if !r.Timestamp.Before(since) {
				n++
			}
		}
		return n, nil
	})
}

func printSettings(cmd *cobra.Command, settings models.UserSettings) error {
	if outputJSON {
		return printJSON(cmd.OutOrStdout(), settings)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reminder cadence: %s\n", settings.NotificationCadence)
	return nil
}
