// ABOUTME: Meeting CLI commands
// ABOUTME: Lists upcoming meetings, books new ones and cancels them
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
)

// MeetingsCommand handles "meetings <subcommand>".
func MeetingsCommand(ctx context.Context, env *Env, args []string) error {
	return Dispatch(ctx, env, "meetings", map[string]Command{
		"list":   ListMeetingsCommand,
		"add":    AddMeetingCommand,
		"delete": DeleteMeetingCommand,
	}, args)
}

func ListMeetingsCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("meetings list", flag.ExitOnError)
	query := fs.String("query", "", "Search by contact name or company")
	meetingType := fs.String("type", "", "Filter by meeting type")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	if *meetingType != "" {
		if err := oneOf(models.MeetingTypes, *meetingType, "type"); err != nil {
			return err
		}
	}

	meetings := env.Workspace().Meetings
	if err := meetings.Load(ctx); err != nil {
		return fmt.Errorf("failed to load meetings: %w", err)
	}
	meetings.SetFilter(pages.MeetingFilter{Type: *meetingType, Search: *query})
	visible := meetings.Visible()

	if len(visible) == 0 {
		fmt.Fprintln(env.Out, "No meetings found")
		return nil
	}

	w := newTable(env.Out, "CONTACT", "COMPANY", "DATE", "TIME", "DURATION", "TYPE", "STATUS", "ID")
	for _, m := range visible[:min(*limit, len(visible))] {
		row(w, m.ContactName, m.Company, m.Date, m.Time, m.Duration, m.Type, m.Status, m.ID)
	}
	return w.Flush()
}

// AddMeetingCommand books a meeting. New meetings are Pending.
func AddMeetingCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("meetings add", flag.ExitOnError)
	contact := fs.String("contact", "", "Contact name (required)")
	company := fs.String("company", "", "Company name")
	date := fs.String("date", "", "Date YYYY-MM-DD (required)")
	at := fs.String("time", "", "Start time HH:MM (required)")
	duration := fs.String("duration", models.MeetingDurations[0], "Duration")
	meetingType := fs.String("type", models.MeetingScheduled, "Meeting type")
	notes := fs.String("notes", "", "Agenda or notes")
	_ = fs.Parse(args)

	created, err := env.Workspace().Meetings.Add(ctx, models.Meeting{
		ContactName: *contact,
		Company:     *company,
		Date:        *date,
		Time:        *at,
		Duration:    *duration,
		Type:        *meetingType,
		Notes:       *notes,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "%s on %s at %s (ID: %s)\n", created.ContactName, created.Date, created.Time, created.ID)
	return nil
}

// DeleteMeetingCommand cancels a meeting.
func DeleteMeetingCommand(ctx context.Context, env *Env, args []string) error {
	id, err := requireArg(args, "meeting ID")
	if err != nil {
		return err
	}
	return env.Workspace().Meetings.Delete(ctx, id)
}
