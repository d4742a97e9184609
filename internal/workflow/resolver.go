// Package workflow resolves human-readable status names against the
// transitions Jira reports as currently legal for an issue. The resolver
// holds no workflow topology of its own: legality is exactly the
// candidate list supplied per call. Callers must fetch the list fresh
// immediately before resolving; it becomes invalid the moment the
// issue's status changes.
package workflow

import (
	"fmt"
	"strings"
)

// Candidate is one currently legal transition for an issue. The list a
// caller receives carries no ordering with respect to the workflow.
type Candidate struct {
	ID   string
	Name string
}

// NotAvailableError reports that the target name matched none of the
// current candidates. It carries every legal alternative so the caller
// can present options instead of guessing.
type NotAvailableError struct {
	Target    string
	Available []string
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf(
		"transition %q is not available; valid transitions: %s",
		e.Target, strings.Join(e.Available, ", "),
	)
}

// Resolve matches target case-insensitively against the candidate names
// and returns the matching transition's identifier. There is no fuzzy
// matching: a miss fails with the full list of legal names. Names are
// assumed unique within one candidate list; the first match wins.
func Resolve(target string, candidates []Candidate) (string, error) {
	for _, c := range candidates {
		if strings.EqualFold(c.Name, target) {
			return c.ID, nil
		}
	}

	available := make([]string, 0, len(candidates))
	for _, c := range candidates {
		available = append(available, c.Name)
	}
	return "", &NotAvailableError{Target: target, Available: available}
}
