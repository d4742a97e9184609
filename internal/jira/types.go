package jira

// SearchResponse is the response from POST /rest/api/3/search.
type SearchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Issue is a single issue as returned by the REST API. Fields stays an
// untyped map because custom field identifiers vary per tenant; the
// payload projection partitions it into friendly output.
type Issue struct {
	ID     string         `json:"id"`
	Key    string         `json:"key"`
	Self   string         `json:"self"`
	Fields map[string]any `json:"fields"`
}

// CreatedIssue is the response from POST /rest/api/3/issue.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Transition is one workflow transition currently available for an
// issue. Only id and name are used; the target status is ignored.
type Transition struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	To   map[string]any `json:"to,omitempty"`
}

// TransitionsResponse wraps the list of transitions returned by
// GET /rest/api/3/issue/{key}/transitions.
type TransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

// User is a Jira Cloud user as returned by user search.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
}

// Comment is the response from posting a comment.
type Comment struct {
	ID      string `json:"id"`
	Created string `json:"created"`
}

// Attachment describes one uploaded attachment.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Myself is the response from GET /rest/api/3/myself.
type Myself struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
	Active       bool   `json:"active"`
}

// ErrorResponse is the standard Jira error response format.
type ErrorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
