package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rgoulet/jirabridge/internal/config"
	"github.com/rgoulet/jirabridge/internal/credential"
	"github.com/rgoulet/jirabridge/internal/jira"
	"github.com/rgoulet/jirabridge/internal/journal"
)

var (
	configPathFlag string
	jsonFlag       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jirabridge",
		Short: "Manage Jira work items from the command line",
		Long: `jirabridge manages Jira Cloud work items: search, create, update,
comment, transition, delete, user lookup and attachments.

Friendly field names (work_type, risk_level, approvers, ...) are
translated per project to the tenant's custom field identifiers.
Unmapped fields can be written through the --raw escape hatch and are
preserved verbatim on reads under custom_fields.

Run "jirabridge setup" first to store the instance URL, account email
and API token.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(
		&configPathFlag, "config", config.DefaultPath(), "config file path",
	)
	rootCmd.PersistentFlags().BoolVar(
		&jsonFlag, "json", false, "print raw JSON output",
	)

	rootCmd.AddCommand(setupCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(commentCmd())
	rootCmd.AddCommand(transitionsCmd())
	rootCmd.AddCommand(transitionCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(attachCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadService builds an authenticated service from config + keyring.
func loadService() (*jira.Service, *config.Config, error) {
	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return nil, nil, err
	}
	if cfg.BaseURL == "" || cfg.Email == "" {
		return nil, nil, fmt.Errorf(
			"no Jira connection configured; run: jirabridge setup",
		)
	}

	token, err := credential.GetToken()
	if err != nil {
		return nil, nil, fmt.Errorf(
			"no API token found; run: jirabridge setup (%w)", err,
		)
	}

	client := jira.NewClient(cfg.BaseURL, cfg.Email, token)
	return jira.NewService(client), cfg, nil
}

// recordJournal appends an operation entry, best effort. A journal
// failure must not fail the operation that already succeeded remotely.
func recordJournal(ctx context.Context, cfg *config.Config, operation, issueKey string, detail any) {
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: journal unavailable: %v\n", err)
		return
	}
	defer j.Close()

	if err := j.Record(ctx, operation, issueKey, detail); err != nil {
		fmt.Fprintf(os.Stderr, "warning: journal write failed: %v\n", err)
	}
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseFieldArgs parses repeated key=value flags. Values are tried as
// JSON first so lists and objects can be passed; anything that doesn't
// parse is kept as a plain string.
func parseFieldArgs(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field argument %q, want key=value", arg)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}
