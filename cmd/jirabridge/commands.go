package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rgoulet/jirabridge/internal/config"
	"github.com/rgoulet/jirabridge/internal/credential"
	"github.com/rgoulet/jirabridge/internal/journal"
)

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure the Jira connection and store the API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPathFlag)
			if err != nil {
				return err
			}

			var token string
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Jira base URL").
						Description("e.g. https://company.atlassian.net").
						Value(&cfg.BaseURL),
					huh.NewInput().
						Title("Account email").
						Value(&cfg.Email),
					huh.NewInput().
						Title("API token").
						EchoMode(huh.EchoModePassword).
						Value(&token),
					huh.NewInput().
						Title("Default project key (optional)").
						Value(&cfg.DefaultProject),
				),
			)
			if err := form.Run(); err != nil {
				return fmt.Errorf("running setup form: %w", err)
			}

			cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
			cfg.Email = strings.TrimSpace(cfg.Email)

			if token != "" {
				if err := credential.SetToken(token); err != nil {
					return err
				}
			}
			if err := config.Save(configPathFlag, cfg); err != nil {
				return err
			}

			svc, _, err := loadService()
			if err != nil {
				return err
			}
			name, err := svc.ValidateConnection(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Connected as %s\n", name)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var (
		maxResults int
		fields     []string
	)
	cmd := &cobra.Command{
		Use:   "search [jql]",
		Short: "Search issues with JQL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}

			jql := ""
			if len(args) == 1 {
				jql = args[0]
			} else if cfg.DefaultProject != "" {
				jql = fmt.Sprintf(
					"project = %s ORDER BY updated DESC", cfg.DefaultProject,
				)
			} else {
				return fmt.Errorf("a JQL query is required (no default project configured)")
			}

			if maxResults == 0 {
				maxResults = cfg.MaxResults
			}

			result, err := svc.SearchIssues(cmd.Context(), jql, maxResults, fields)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(result)
			}
			printIssueList(result)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxResults, "max", 0, "maximum results (default from config)")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to request")
	return cmd
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <issue-key>",
		Short: "Show full details for an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			issue, err := svc.GetIssue(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(issue)
			}
			printIssue(issue)
			return nil
		},
	}
}

// issueFieldFlags are the friendly parameters shared by create and
// update. Only flags the user actually set are sent.
type issueFieldFlags struct {
	summary     string
	description string
	priority    string
	assignee    string
	labels      []string
	components  []string
	fieldArgs   []string
	rawArgs     []string
}

func (f *issueFieldFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.summary, "summary", "", "issue summary")
	cmd.Flags().StringVar(&f.description, "description", "", "plain text description")
	cmd.Flags().StringVar(&f.priority, "priority", "", "priority name (High, Medium, Low)")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "assignee account id or email")
	cmd.Flags().StringSliceVar(&f.labels, "labels", nil, "labels (replaces existing on update)")
	cmd.Flags().StringSliceVar(&f.components, "components", nil, "component names")
	cmd.Flags().StringArrayVar(&f.fieldArgs, "field", nil,
		"friendly custom field as name=value (value parsed as JSON when possible)")
	cmd.Flags().StringArrayVar(&f.rawArgs, "raw", nil,
		"raw wire field as customfield_XXXXX=value (escape hatch, overrides mapped fields)")
}

// collect builds the friendly and raw parameter maps from whichever
// flags were set.
func (f *issueFieldFlags) collect(cmd *cobra.Command) (map[string]any, map[string]any, error) {
	friendly := map[string]any{}
	if cmd.Flags().Changed("summary") {
		friendly["summary"] = f.summary
	}
	if cmd.Flags().Changed("description") {
		friendly["description"] = f.description
	}
	if cmd.Flags().Changed("priority") {
		friendly["priority"] = f.priority
	}
	if cmd.Flags().Changed("assignee") {
		friendly["assignee"] = f.assignee
	}
	if cmd.Flags().Changed("labels") {
		friendly["labels"] = f.labels
	}
	if cmd.Flags().Changed("components") {
		friendly["components"] = f.components
	}

	extra, err := parseFieldArgs(f.fieldArgs)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range extra {
		friendly[k] = v
	}

	raw, err := parseFieldArgs(f.rawArgs)
	if err != nil {
		return nil, nil, err
	}
	return friendly, raw, nil
}

func createCmd() *cobra.Command {
	var (
		project   string
		issueType string
		parentKey string
		epicLink  string
		flags     issueFieldFlags
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an issue",
		Long: `Create an issue. Hierarchy:
  Epic:            --type Epic
  Task under epic: --type Task --epic ITPROJECT-12
  Subtask:         --type Sub-task --parent ITPROJECT-34`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}
			if project == "" {
				project = cfg.DefaultProject
			}

			friendly, raw, err := flags.collect(cmd)
			if err != nil {
				return err
			}
			if parentKey != "" {
				friendly["parent_key"] = parentKey
			}
			if epicLink != "" {
				friendly["epic_link"] = epicLink
			}

			result, err := svc.CreateIssue(cmd.Context(), project, issueType, friendly, raw)
			if err != nil {
				return err
			}
			recordJournal(cmd.Context(), cfg, "create", result.Key, friendly)

			if jsonFlag {
				return printJSON(result)
			}
			fmt.Printf("Created %s\n%s\n", keyStyle.Render(result.Key), result.URL)
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "project key (default from config)")
	cmd.Flags().StringVar(&issueType, "type", "", "issue type name (Epic, Task, Sub-task, ...)")
	cmd.Flags().StringVar(&parentKey, "parent", "", "parent issue key (for subtasks)")
	cmd.Flags().StringVar(&epicLink, "epic", "", "epic issue key (links a task to an epic)")
	flags.register(cmd)
	return cmd
}

func updateCmd() *cobra.Command {
	var flags issueFieldFlags
	cmd := &cobra.Command{
		Use:   "update <issue-key>",
		Short: "Update fields on an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}

			friendly, raw, err := flags.collect(cmd)
			if err != nil {
				return err
			}

			if err := svc.UpdateIssue(cmd.Context(), args[0], friendly, raw); err != nil {
				return err
			}
			recordJournal(cmd.Context(), cfg, "update", args[0], friendly)

			fmt.Printf("Updated %s\n", keyStyle.Render(args[0]))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <issue-key> <text>",
		Short: "Add a comment to an issue",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}

			body := strings.Join(args[1:], " ")
			result, err := svc.AddComment(cmd.Context(), args[0], body)
			if err != nil {
				return err
			}
			recordJournal(cmd.Context(), cfg, "comment", args[0],
				map[string]string{"comment_id": result.ID})

			if jsonFlag {
				return printJSON(result)
			}
			fmt.Printf("Commented on %s (comment %s)\n",
				keyStyle.Render(args[0]), result.ID)
			return nil
		},
	}
}

func transitionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transitions <issue-key>",
		Short: "List the transitions currently available for an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			candidates, err := svc.GetTransitions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(candidates)
			}
			for _, c := range candidates {
				fmt.Printf("%s  %s\n", labelStyle.Render(c.ID), c.Name)
			}
			return nil
		},
	}
}

func transitionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transition <issue-key> [target-status]",
		Short: "Move an issue through its workflow",
		Long: `Move an issue to a target status by name (case-insensitive).
Without a target the currently legal transitions are offered
interactively. Only transitions legal from the issue's current status
can succeed; a miss lists the valid alternatives.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}

			var target string
			if len(args) == 2 {
				target = args[1]
			} else {
				candidates, err := svc.GetTransitions(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					return fmt.Errorf("no transitions available for %s", args[0])
				}
				options := make([]huh.Option[string], 0, len(candidates))
				for _, c := range candidates {
					options = append(options, huh.NewOption(c.Name, c.Name))
				}
				sel := huh.NewSelect[string]().
					Title("Transition " + args[0] + " to").
					Options(options...).
					Value(&target)
				if err := sel.Run(); err != nil {
					return fmt.Errorf("selecting transition: %w", err)
				}
			}

			result, err := svc.TransitionIssue(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			recordJournal(cmd.Context(), cfg, "transition", args[0],
				map[string]string{"target": target, "transition_id": result.TransitionID})

			fmt.Printf("Transitioned %s to %s\n",
				keyStyle.Render(args[0]), statusStyle.Render(target))
			return nil
		},
	}
}

func deleteCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "delete <issue-key>",
		Short: "Permanently delete an issue (requires --confirm)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}
			if err := svc.DeleteIssue(cmd.Context(), args[0], confirm); err != nil {
				return err
			}
			recordJournal(cmd.Context(), cfg, "delete", args[0], nil)

			fmt.Printf("Deleted %s\n", keyStyle.Render(args[0]))
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false,
		"acknowledge that deletion is permanent")
	return cmd
}

func usersCmd() *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "users <query>",
		Short: "Find users by name or email to get account IDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			users, err := svc.SearchUsers(cmd.Context(), args[0], maxResults)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(users)
			}
			printUsers(users)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxResults, "max", 10, "maximum results")
	return cmd
}

func attachCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "attach <issue-key> <file>",
		Short: "Upload a file attachment to an issue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := loadService()
			if err != nil {
				return err
			}
			attachment, err := svc.AttachFile(cmd.Context(), args[0], args[1], name)
			if err != nil {
				return err
			}
			recordJournal(cmd.Context(), cfg, "attach", args[0],
				map[string]any{"filename": attachment.Filename, "size": attachment.Size})

			if jsonFlag {
				return printJSON(attachment)
			}
			fmt.Printf("Attached %s to %s (%d bytes)\n",
				attachment.Filename, keyStyle.Render(args[0]), attachment.Size)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "override the stored filename")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [issue-key]",
		Short: "Show the local journal of operations performed by this tool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPathFlag)
			if err != nil {
				return err
			}
			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			var entries []journal.Entry
			if len(args) == 1 {
				entries, err = j.ForIssue(cmd.Context(), args[0])
			} else {
				entries, err = j.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if jsonFlag {
				return printJSON(entries)
			}
			printEntries(entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	return cmd
}
