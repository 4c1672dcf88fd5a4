// ABOUTME: Group CLI commands
// ABOUTME: Creates and deletes groups and manages lead or contact membership
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/harperreed/crmtui/models"
)

// GroupsCommand handles "groups <subcommand>".
func GroupsCommand(ctx context.Context, env *Env, args []string) error {
	return Dispatch(ctx, env, "groups", map[string]Command{
		"list":          ListGroupsCommand,
		"create":        CreateGroupCommand,
		"delete":        DeleteGroupCommand,
		"add-members":   AddGroupMembersCommand,
		"remove-member": RemoveGroupMemberCommand,
	}, args)
}

func ListGroupsCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("groups list", flag.ExitOnError)
	query := fs.String("query", "", "Search by group name")
	members := fs.Bool("members", false, "List each group's members")
	_ = fs.Parse(args)

	groups := env.Workspace().Groups
	if err := groups.Load(ctx); err != nil {
		return fmt.Errorf("failed to load groups: %w", err)
	}
	visible := groups.Visible(*query)
	if len(visible) == 0 {
		fmt.Fprintln(env.Out, "No groups found")
		return nil
	}

	if !*members {
		w := newTable(env.Out, "NAME", "MEMBERS", "ID")
		for _, g := range visible {
			row(w, g.Name, fmt.Sprint(len(g.Members)), g.ID)
		}
		return w.Flush()
	}

	for i, g := range visible {
		if i > 0 {
			fmt.Fprintln(env.Out)
		}
		fmt.Fprintf(env.Out, "%s (ID: %s)\n", g.Name, g.ID)
		resolved := groups.Members(g.ID)
		if len(resolved) == 0 {
			fmt.Fprintln(env.Out, "  (no members)")
			continue
		}
		for _, p := range resolved {
			fmt.Fprintf(env.Out, "  - %s, %s <%s> (ID: %s)\n", p.Name, p.Company, p.Email, p.ID)
		}
	}
	return nil
}

func CreateGroupCommand(ctx context.Context, env *Env, args []string) error {
	name := strings.Join(args, " ")
	created, err := env.Workspace().Groups.Create(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s (ID: %s)\n", created.Name, created.ID)
	return nil
}

func DeleteGroupCommand(ctx context.Context, env *Env, args []string) error {
	id, err := requireArg(args, "group ID")
	if err != nil {
		return err
	}
	return env.Workspace().Groups.Delete(ctx, id)
}

// AddGroupMembersCommand adds leads or contacts: "groups add-members --type lead <group> <id>...".
func AddGroupMembersCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("groups add-members", flag.ExitOnError)
	memberType := fs.String("type", string(models.EntityLead), "Member type: lead or contact")
	_ = fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: groups add-members [--type lead|contact] <group-id> <member-id>...")
	}
	return env.Workspace().Groups.AddMembers(ctx, fs.Arg(0), models.EntityType(*memberType), fs.Args()[1:])
}

// RemoveGroupMemberCommand drops one member: "groups remove-member --type lead <group> <id>".
func RemoveGroupMemberCommand(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("groups remove-member", flag.ExitOnError)
	memberType := fs.String("type", string(models.EntityLead), "Member type: lead or contact")
	_ = fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: groups remove-member [--type lead|contact] <group-id> <member-id>")
	}
	return env.Workspace().Groups.RemoveMember(ctx, fs.Arg(0), fs.Arg(1), models.EntityType(*memberType))
}
