package jira

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rgoulet/jirabridge/internal/adf"
	"github.com/rgoulet/jirabridge/internal/payload"
	"github.com/rgoulet/jirabridge/internal/workflow"
)

// defaultSearchFields are requested when the caller does not narrow the
// field list on a search.
var defaultSearchFields = []string{
	"summary", "status", "assignee", "created", "updated",
}

const maxSearchResults = 100

// ErrDeleteNotConfirmed is returned when DeleteIssue is called without
// the explicit confirmation flag. Deletion is permanent; transitioning
// to Done is the normal way to finish work.
var ErrDeleteNotConfirmed = errors.New(
	"deletion requires explicit confirmation; it permanently removes the issue",
)

// Service exposes the high-level issue operations. All translation
// between friendly parameters and wire shapes happens here, before any
// request is sent; translation failures are never retried.
type Service struct {
	client *Client
}

// NewService creates a Service on top of an authenticated client.
func NewService(client *Client) *Service {
	return &Service{client: client}
}

// ValidateConnection verifies credentials by calling the myself
// endpoint and returns the authenticated user's display name.
func (s *Service) ValidateConnection(ctx context.Context) (string, error) {
	var me Myself
	if err := s.client.Get(ctx, "/rest/api/3/myself", &me); err != nil {
		return "", fmt.Errorf("validating Jira connection: %w", err)
	}
	return me.DisplayName, nil
}

// SearchResult holds a page of issue summaries.
type SearchResult struct {
	Total  int
	Issues []map[string]any
}

// SearchIssues runs a JQL query and returns lightweight issue
// summaries: key, summary, status, assignee, created, updated.
func (s *Service) SearchIssues(
	ctx context.Context,
	jql string,
	maxResults int,
	fields []string,
) (*SearchResult, error) {
	if maxResults < 1 {
		maxResults = 50
	}
	if maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}
	if len(fields) == 0 {
		fields = defaultSearchFields
	}

	body := map[string]any{
		"jql":        jql,
		"fields":     fields,
		"maxResults": maxResults,
	}

	var resp SearchResponse
	if err := s.client.Post(ctx, "/rest/api/3/search", body, &resp); err != nil {
		return nil, fmt.Errorf("searching issues: %w", err)
	}

	issues := make([]map[string]any, 0, len(resp.Issues))
	for _, issue := range resp.Issues {
		issues = append(issues, issueSummary(issue))
	}
	return &SearchResult{Total: resp.Total, Issues: issues}, nil
}

// GetIssue fetches one issue and projects it into friendly output.
// Mapped custom fields appear under their friendly names; unmapped ones
// are preserved under custom_fields.
func (s *Service) GetIssue(
	ctx context.Context,
	issueKey string,
) (map[string]any, error) {
	var issue Issue
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey)
	if err := s.client.Get(ctx, path, &issue); err != nil {
		return nil, fmt.Errorf("fetching issue %s: %w", issueKey, err)
	}

	friendly, err := payload.Project(projectOf(issue.Key), issue.Key, issue.Fields)
	if err != nil {
		return nil, fmt.Errorf("projecting issue %s: %w", issueKey, err)
	}
	friendly["url"] = s.browseURL(issue.Key)
	return friendly, nil
}

// CreateResult identifies a newly created issue.
type CreateResult struct {
	Key string
	URL string
}

// CreateIssue builds the create payload from friendly and raw
// parameters and submits it. Epics, tasks under epics (epic_link) and
// subtasks (parent_key) are all expressed through the friendly surface.
func (s *Service) CreateIssue(
	ctx context.Context,
	project string,
	issueType string,
	friendly map[string]any,
	raw map[string]any,
) (*CreateResult, error) {
	fields, err := payload.Build(project, issueType, friendly, raw)
	if err != nil {
		return nil, err
	}

	var created CreatedIssue
	body := map[string]any{"fields": fields}
	if err := s.client.Post(ctx, "/rest/api/3/issue", body, &created); err != nil {
		return nil, fmt.Errorf("creating issue in %s: %w", project, err)
	}

	return &CreateResult{
		Key: created.Key,
		URL: s.browseURL(created.Key),
	}, nil
}

// UpdateIssue applies friendly and raw field updates to an existing
// issue. List fields replace existing values wholesale.
func (s *Service) UpdateIssue(
	ctx context.Context,
	issueKey string,
	friendly map[string]any,
	raw map[string]any,
) error {
	fields, err := payload.BuildUpdate(projectOf(issueKey), friendly, raw)
	if err != nil {
		return err
	}

	path := "/rest/api/3/issue/" + url.PathEscape(issueKey)
	body := map[string]any{"fields": fields}
	if err := s.client.Put(ctx, path, body, nil); err != nil {
		return fmt.Errorf("updating issue %s: %w", issueKey, err)
	}
	return nil
}

// CommentResult identifies a newly added comment.
type CommentResult struct {
	ID      string
	Created string
}

// AddComment posts a plain-text comment, converted to a document body.
func (s *Service) AddComment(
	ctx context.Context,
	issueKey string,
	body string,
) (*CommentResult, error) {
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/comment"
	req := map[string]any{"body": adf.FromText(body)}

	var comment Comment
	if err := s.client.Post(ctx, path, req, &comment); err != nil {
		return nil, fmt.Errorf("adding comment to %s: %w", issueKey, err)
	}
	return &CommentResult{ID: comment.ID, Created: comment.Created}, nil
}

// GetTransitions returns the transitions currently legal for an issue.
// The list is valid only until the issue's status changes, so it is
// never cached.
func (s *Service) GetTransitions(
	ctx context.Context,
	issueKey string,
) ([]workflow.Candidate, error) {
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/transitions"

	var resp TransitionsResponse
	if err := s.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching transitions for %s: %w", issueKey, err)
	}

	candidates := make([]workflow.Candidate, 0, len(resp.Transitions))
	for _, t := range resp.Transitions {
		candidates = append(candidates, workflow.Candidate{ID: t.ID, Name: t.Name})
	}
	return candidates, nil
}

// TransitionResult reports a performed workflow transition.
type TransitionResult struct {
	Key            string
	TransitionID   string
	TransitionedAt time.Time
}

// TransitionIssue moves an issue through its workflow by target status
// name. The candidate list is fetched fresh immediately before
// resolution; if the service rejects the submit because the issue moved
// in between, that failure is reported, not retried.
func (s *Service) TransitionIssue(
	ctx context.Context,
	issueKey string,
	targetName string,
) (*TransitionResult, error) {
	candidates, err := s.GetTransitions(ctx, issueKey)
	if err != nil {
		return nil, err
	}

	id, err := workflow.Resolve(targetName, candidates)
	if err != nil {
		return nil, err
	}

	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/transitions"
	body := map[string]any{
		"transition": map[string]string{"id": id},
	}
	// Transition endpoint returns 204 No Content on success.
	if err := s.client.Post(ctx, path, body, nil); err != nil {
		return nil, fmt.Errorf("transitioning %s to %q: %w", issueKey, targetName, err)
	}

	return &TransitionResult{
		Key:            issueKey,
		TransitionID:   id,
		TransitionedAt: time.Now(),
	}, nil
}

// DeleteIssue permanently deletes an issue. The confirm flag is a
// safety latch: without it nothing is sent. Subtasks must be deleted
// before their parents.
func (s *Service) DeleteIssue(
	ctx context.Context,
	issueKey string,
	confirm bool,
) error {
	if !confirm {
		return ErrDeleteNotConfirmed
	}
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey)
	if err := s.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("deleting issue %s: %w", issueKey, err)
	}
	return nil
}

// SearchUsers finds users by name or email, for resolving account IDs
// used in people fields such as assignee and approvers.
func (s *Service) SearchUsers(
	ctx context.Context,
	query string,
	maxResults int,
) ([]User, error) {
	if maxResults < 1 {
		maxResults = 10
	}
	path := fmt.Sprintf(
		"/rest/api/3/user/search?query=%s&maxResults=%d",
		url.QueryEscape(query), maxResults,
	)

	var users []User
	if err := s.client.Get(ctx, path, &users); err != nil {
		return nil, fmt.Errorf("searching users %q: %w", query, err)
	}
	return users, nil
}

// AttachFile uploads a file attachment to an issue. The filename
// argument overrides the stored name; empty keeps the file's base name.
func (s *Service) AttachFile(
	ctx context.Context,
	issueKey string,
	filePath string,
	filename string,
) (*Attachment, error) {
	path := "/rest/api/3/issue/" + url.PathEscape(issueKey) + "/attachments"

	// The endpoint returns a list with one entry per uploaded file.
	var attachments []Attachment
	err := s.client.PostFile(ctx, path, filePath, filename, &attachments)
	if err != nil {
		return nil, fmt.Errorf("attaching %s to %s: %w", filePath, issueKey, err)
	}
	if len(attachments) == 0 {
		return nil, fmt.Errorf("attaching %s to %s: empty response", filePath, issueKey)
	}
	return &attachments[0], nil
}

// issueSummary extracts the lightweight search listing fields.
func issueSummary(issue Issue) map[string]any {
	summary := map[string]any{"key": issue.Key}
	if s, ok := issue.Fields["summary"].(string); ok {
		summary["summary"] = s
	}
	if status, ok := issue.Fields["status"].(map[string]any); ok {
		summary["status"] = status["name"]
	}
	if user, ok := issue.Fields["assignee"].(map[string]any); ok {
		summary["assignee"] = user["displayName"]
	}
	if created, ok := issue.Fields["created"].(string); ok {
		summary["created"] = created
	}
	if updated, ok := issue.Fields["updated"].(string); ok {
		summary["updated"] = updated
	}
	return summary
}

// projectOf derives the project key from an issue key like "ITCM-42".
func projectOf(issueKey string) string {
	if i := strings.IndexByte(issueKey, '-'); i > 0 {
		return issueKey[:i]
	}
	return issueKey
}

func (s *Service) browseURL(issueKey string) string {
	return s.client.BaseURL() + "/browse/" + issueKey
}
