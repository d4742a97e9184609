package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgoulet/jirabridge/internal/jira"
	"github.com/rgoulet/jirabridge/internal/journal"
)

var (
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// printIssueList renders search results, one issue per line.
func printIssueList(result *jira.SearchResult) {
	fmt.Printf("%d issue(s) matched\n", result.Total)
	for _, issue := range result.Issues {
		key, _ := issue["key"].(string)
		summary, _ := issue["summary"].(string)
		status, _ := issue["status"].(string)
		assignee, _ := issue["assignee"].(string)

		line := keyStyle.Render(key) + "  " + summary
		if status != "" {
			line += "  " + statusStyle.Render("["+status+"]")
		}
		if assignee != "" {
			line += "  " + labelStyle.Render(assignee)
		}
		fmt.Println(line)
	}
}

// printIssue renders one friendly issue, well-known fields first and
// the rest alphabetically.
func printIssue(issue map[string]any) {
	ordered := []string{
		"key", "summary", "status", "issue_type", "priority",
		"assignee", "reporter", "resolution", "created", "updated",
		"labels", "components", "description",
	}
	printed := map[string]bool{}

	for _, k := range ordered {
		if v, ok := issue[k]; ok {
			printField(k, v)
			printed[k] = true
		}
	}

	rest := make([]string, 0, len(issue))
	for k := range issue {
		if !printed[k] && k != "url" {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		printField(k, issue[k])
	}

	if url, ok := issue["url"].(string); ok {
		printField("url", url)
	}
}

func printField(key string, value any) {
	switch v := value.(type) {
	case map[string]any:
		if name, ok := v["name"]; ok {
			value = name
		}
	case string:
		if strings.Contains(v, "\n") {
			fmt.Printf("%s\n%s\n", labelStyle.Render(key+":"), v)
			return
		}
	}
	fmt.Printf("%s %v\n", labelStyle.Render(key+":"), value)
}

// printUsers renders user search results.
func printUsers(users []jira.User) {
	for _, u := range users {
		active := ""
		if !u.Active {
			active = labelStyle.Render(" (inactive)")
		}
		fmt.Printf("%s  %s  %s%s\n",
			keyStyle.Render(u.AccountID), u.DisplayName, u.EmailAddress, active,
		)
	}
	fmt.Printf("%d user(s)\n", len(users))
}

// printEntries renders journal entries.
func printEntries(entries []journal.Entry) {
	for _, e := range entries {
		fmt.Printf("%s  %-12s %s  %s\n",
			labelStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04:05")),
			e.Operation,
			keyStyle.Render(e.IssueKey),
			e.Detail,
		)
	}
}
