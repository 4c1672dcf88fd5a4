// ABOUTME: Lead and contact CLI commands
// ABOUTME: List, add, delete, import and status changes run through the same controllers as the TUI
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harperreed/crmtui/models"
	"github.com/harperreed/crmtui/pages"
	"github.com/harperreed/crmtui/views"
)

// LeadsCommand handles "leads <subcommand>".
func LeadsCommand(ctx context.Context, env *Env, args []string) error {
	return peopleCommand(ctx, env, env.Workspace().Leads, "leads", args)
}

// ContactsCommand handles "contacts <subcommand>".
func ContactsCommand(ctx context.Context, env *Env, args []string) error {
	return peopleCommand(ctx, env, env.Workspace().Contacts, "contacts", args)
}

func peopleCommand(ctx context.Context, env *Env, people *pages.People, group string, args []string) error {
	return Dispatch(ctx, env, group, map[string]Command{
		"list":       func(ctx context.Context, env *Env, args []string) error { return listPeople(ctx, env, people, args) },
		"show":       func(ctx context.Context, env *Env, args []string) error { return showPerson(ctx, env, people, args) },
		"add":        func(ctx context.Context, env *Env, args []string) error { return addPerson(ctx, env, people, args) },
		"delete":     func(ctx context.Context, env *Env, args []string) error { return deletePerson(ctx, env, people, args) },
		"delete-all": func(ctx context.Context, env *Env, args []string) error { return deleteAllPeople(ctx, env, people, args) },
		"import":     func(ctx context.Context, env *Env, args []string) error { return importPeople(ctx, env, people, args) },
		"status":     func(ctx context.Context, env *Env, args []string) error { return updatePersonStatus(ctx, env, people, args) },
	}, args)
}

func listPeople(ctx context.Context, env *Env, people *pages.People, args []string) error {
	label := people.Entity().Label()
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	query := fs.String("query", "", "Search by name, company or email")
	status := fs.String("status", "", "Filter by status")
	group := fs.String("group", "", "Filter by group name or ID")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	if *status != "" {
		if err := oneOf(models.LeadStatuses, *status, "status"); err != nil {
			return err
		}
	}
	if err := people.Load(ctx); err != nil {
		return fmt.Errorf("failed to load %ss: %w", strings.ToLower(label), err)
	}

	filter := pages.PersonFilter{Status: *status, Search: *query}
	if *group != "" {
		g, ok := people.FindGroup(*group)
		if !ok {
			return fmt.Errorf("group not found: %s", *group)
		}
		filter.Group = g.ID
	}
	people.SetFilter(filter)
	visible := people.Visible()

	if len(visible) == 0 {
		fmt.Fprintf(env.Out, "No %ss found\n", strings.ToLower(label))
		return nil
	}

	w := newTable(env.Out, "NAME", "COMPANY", "EMAIL", "STATUS", "VALUE", "ASSIGNEE", "ADDED", "ID")
	for _, p := range visible[:min(*limit, len(visible))] {
		row(w, p.Name, p.Company, p.Email, p.Status, views.Money(float64(p.Value)),
			models.UserName(people.Users(), p.Assignee), views.Ago(p.CreatedAt.Time), p.ID)
	}
	_ = w.Flush()

	if len(visible) > *limit {
		fmt.Fprintf(env.Out, "\nShowing %d of %d %ss\n", *limit, len(visible), strings.ToLower(label))
	}
	return nil
}

func showPerson(ctx context.Context, env *Env, people *pages.People, args []string) error {
	id, err := requireArg(args, people.Entity().Label()+" ID")
	if err != nil {
		return err
	}
	if err := people.Load(ctx); err != nil {
		return err
	}
	p, ok := people.Find(id)
	if !ok {
		return fmt.Errorf("%s not found: %s", people.Entity(), id)
	}

	out := env.Out
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.ID)
	for _, f := range []struct{ label, value string }{
		{"Company", p.Company},
		{"Email", p.Email},
		{"Phone", p.Phone},
		{"Address", p.Address},
		{"Website", p.Website},
		{"Channel", p.Channel},
		{"Size", p.CompanySize},
		{"Niche", p.Niche},
		{"Status", p.Status},
		{"Value", views.Money(float64(p.Value))},
		{"Assignee", models.UserName(people.Users(), p.Assignee)},
		{"Added", views.Ago(p.CreatedAt.Time)},
	} {
		if f.value != "" {
			fmt.Fprintf(out, "  %-9s %s\n", f.label+":", f.value)
		}
	}
	if p.Description != "" {
		fmt.Fprintf(out, "\n  %s\n", p.Description)
	}
	if len(p.Notes) > 0 {
		fmt.Fprintln(out, "\nNotes:")
		for _, n := range p.Notes {
			fmt.Fprintf(out, "  - %s\n", n)
		}
	}
	if len(p.Reminders) > 0 {
		fmt.Fprintln(out, "\nReminders:")
		for _, r := range p.Reminders {
			fmt.Fprintf(out, "  - %s (%s)\n", r.Text, r.Date.Local().Format("2006-01-02"))
		}
	}
	return nil
}

func addPerson(ctx context.Context, env *Env, people *pages.People, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	name := fs.String("name", "", "Name (required)")
	company := fs.String("company", "", "Company name (required)")
	email := fs.String("email", "", "Email address (required)")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Postal address")
	website := fs.String("website", "", "Website")
	description := fs.String("description", "", "Notes about the person")
	channel := fs.String("channel", "", "Acquisition channel")
	size := fs.String("company-size", "", "Company size")
	niche := fs.String("niche", "", "Niche")
	status := fs.String("status", models.StatusNew, "Initial status")
	value := fs.Float64("value", 0, "Estimated value")
	_ = fs.Parse(args)

	if err := oneOf(models.LeadStatuses, *status, "status"); err != nil {
		return err
	}

	created, err := people.Add(ctx, models.Person{
		Name:        *name,
		Company:     *company,
		Email:       *email,
		Phone:       *phone,
		Address:     *address,
		Website:     *website,
		Description: *description,
		Channel:     *channel,
		CompanySize: *size,
		Niche:       *niche,
		Status:      *status,
		Value:       models.Number(*value),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "%s (ID: %s)\n", created.Name, created.ID)
	fmt.Fprintf(env.Out, "  Company: %s\n", created.Company)
	fmt.Fprintf(env.Out, "  Email: %s\n", created.Email)
	return nil
}

func deletePerson(ctx context.Context, env *Env, people *pages.People, args []string) error {
	id, err := requireArg(args, people.Entity().Label()+" ID")
	if err != nil {
		return err
	}
	return people.Delete(ctx, id)
}

func deleteAllPeople(ctx context.Context, env *Env, people *pages.People, args []string) error {
	fs := flag.NewFlagSet("delete-all", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	_ = fs.Parse(args)

	if !*yes && !confirm(fmt.Sprintf("Delete every %s? This cannot be undone", people.Entity())) {
		return fmt.Errorf("aborted")
	}
	return people.DeleteAll(ctx)
}

func importPeople(ctx context.Context, env *Env, people *pages.People, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	createGroup := fs.Bool("group", false, "Put the imported records in a new group")
	_ = fs.Parse(args)

	path, err := requireArg(fs.Args(), "CSV file")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	result, err := people.Import(ctx, filepath.Base(path), f, *createGroup)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "Imported %d %ss\n", len(result.Imported), strings.ToLower(people.Entity().Label()))
	if result.Group != nil {
		fmt.Fprintf(env.Out, "  Group: %s (ID: %s)\n", result.Group.Name, result.Group.ID)
	}
	return nil
}

func updatePersonStatus(ctx context.Context, env *Env, people *pages.People, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: status <id> <status>")
	}
	id, status := args[0], strings.Join(args[1:], " ")
	if err := oneOf(models.LeadStatuses, status, "status"); err != nil {
		return err
	}
	if err := people.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s -> %s\n", id, strconv.Quote(status))
	return nil
}
