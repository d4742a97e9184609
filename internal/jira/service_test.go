package jira

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgoulet/jirabridge/internal/payload"
	"github.com/rgoulet/jirabridge/internal/workflow"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "user@example.com", "token123")
	return NewService(client), server
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestCreateIssue(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/api/3/issue", func(w http.ResponseWriter, r *http.Request) {
		captured = decodeBody(t, r)

		wantAuth := "Basic " + base64.StdEncoding.EncodeToString(
			[]byte("user@example.com:token123"),
		)
		assert.Equal(t, wantAuth, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreatedIssue{ID: "10001", Key: "ITHELP-5"})
	})
	svc, server := newTestService(t, mux)

	result, err := svc.CreateIssue(context.Background(), "ITHELP", "Question",
		map[string]any{
			"summary":     "Printer offline",
			"description": "third floor printer",
			"work_type":   "Hardware",
		}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ITHELP-5", result.Key)
	assert.Equal(t, server.URL+"/browse/ITHELP-5", result.URL)

	fields, ok := captured["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"key": "ITHELP"}, fields["project"])
	assert.Equal(t, map[string]any{"name": "Question"}, fields["issuetype"])
	assert.Equal(t, "Printer offline", fields["summary"])
	assert.Equal(t, map[string]any{"value": "Hardware"}, fields["customfield_10055"])

	// The description crossed the wire as a version 1 document tree.
	desc, ok := fields["description"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doc", desc["type"])
	assert.Equal(t, float64(1), desc["version"])
}

func TestCreateIssueFailsBeforeNetwork(t *testing.T) {
	requests := 0
	svc, _ := newTestService(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) { requests++ },
	))

	_, err := svc.CreateIssue(context.Background(), "ITHELP", "Question",
		map[string]any{
			"summary":    "s",
			"risk_level": "Low", // not mapped for ITHELP
		}, nil)

	var unknown *payload.UnknownFieldError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 0, requests, "translation failures must not reach the wire")
}

func TestGetIssue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/issue/ITCM-42", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "10042", "key": "ITCM-42",
			"fields": map[string]any{
				"summary":           "Rotate VPN certificates",
				"status":            map[string]any{"name": "Open", "id": "1"},
				"customfield_10059": map[string]any{"value": "Low"},
				"customfield_77777": "tenant oddity",
			},
		})
	})
	svc, server := newTestService(t, mux)

	issue, err := svc.GetIssue(context.Background(), "ITCM-42")
	require.NoError(t, err)
	assert.Equal(t, "ITCM-42", issue["key"])
	assert.Equal(t, "Rotate VPN certificates", issue["summary"])
	assert.Equal(t, "Low", issue["risk_level"])
	assert.Equal(t, map[string]any{"customfield_77777": "tenant oddity"},
		issue["custom_fields"])
	assert.Equal(t, server.URL+"/browse/ITCM-42", issue["url"])
}

func TestUpdateIssue(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /rest/api/3/issue/ITCM-42", func(w http.ResponseWriter, r *http.Request) {
		captured = decodeBody(t, r)
		w.WriteHeader(http.StatusNoContent)
	})
	svc, _ := newTestService(t, mux)

	err := svc.UpdateIssue(context.Background(), "ITCM-42",
		map[string]any{"risk_level": "High"},
		map[string]any{"customfield_10055": map[string]any{"value": "Security"}},
	)
	require.NoError(t, err)

	fields := captured["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"value": "High"}, fields["customfield_10059"])
	assert.Equal(t, map[string]any{"value": "Security"}, fields["customfield_10055"])
}

func TestUpdateIssueRequiresFields(t *testing.T) {
	requests := 0
	svc, _ := newTestService(t, http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) { requests++ },
	))

	err := svc.UpdateIssue(context.Background(), "ITCM-42", nil, nil)
	assert.ErrorIs(t, err, payload.ErrNoFieldsToUpdate)
	assert.Equal(t, 0, requests)
}

func TestAddComment(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/api/3/issue/ITPROJ-3/comment", func(w http.ResponseWriter, r *http.Request) {
		captured = decodeBody(t, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Comment{ID: "20001", Created: "2026-02-04T10:00:00.000-0600"})
	})
	svc, _ := newTestService(t, mux)

	result, err := svc.AddComment(context.Background(), "ITPROJ-3", "looks good")
	require.NoError(t, err)
	assert.Equal(t, "20001", result.ID)

	body := captured["body"].(map[string]any)
	assert.Equal(t, "doc", body["type"])
}

func TestTransitionIssue(t *testing.T) {
	var submitted map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/issue/ITPROJ-3/transitions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TransitionsResponse{Transitions: []Transition{
			{ID: "3", Name: "In Progress"},
			{ID: "4", Name: "In Review"},
		}})
	})
	mux.HandleFunc("POST /rest/api/3/issue/ITPROJ-3/transitions", func(w http.ResponseWriter, r *http.Request) {
		submitted = decodeBody(t, r)
		w.WriteHeader(http.StatusNoContent)
	})
	svc, _ := newTestService(t, mux)

	result, err := svc.TransitionIssue(context.Background(), "ITPROJ-3", "in progress")
	require.NoError(t, err)
	assert.Equal(t, "3", result.TransitionID)
	assert.Equal(t, map[string]any{"id": "3"}, submitted["transition"])
}

func TestTransitionIssueNotAvailable(t *testing.T) {
	posts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/issue/ITPROJ-3/transitions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TransitionsResponse{Transitions: []Transition{
			{ID: "3", Name: "In Progress"},
			{ID: "4", Name: "In Review"},
		}})
	})
	mux.HandleFunc("POST /rest/api/3/issue/ITPROJ-3/transitions", func(w http.ResponseWriter, r *http.Request) {
		posts++
	})
	svc, _ := newTestService(t, mux)

	_, err := svc.TransitionIssue(context.Background(), "ITPROJ-3", "Done")
	var navail *workflow.NotAvailableError
	require.ErrorAs(t, err, &navail)
	assert.Equal(t, []string{"In Progress", "In Review"}, navail.Available)
	assert.Equal(t, 0, posts, "an unresolved transition must not be submitted")
}

func TestDeleteIssue(t *testing.T) {
	deletes := 0
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /rest/api/3/issue/ITPROJ-3", func(w http.ResponseWriter, r *http.Request) {
		deletes++
		w.WriteHeader(http.StatusNoContent)
	})
	svc, _ := newTestService(t, mux)

	t.Run("without confirmation nothing is sent", func(t *testing.T) {
		err := svc.DeleteIssue(context.Background(), "ITPROJ-3", false)
		assert.ErrorIs(t, err, ErrDeleteNotConfirmed)
		assert.Equal(t, 0, deletes)
	})

	t.Run("with confirmation", func(t *testing.T) {
		err := svc.DeleteIssue(context.Background(), "ITPROJ-3", true)
		require.NoError(t, err)
		assert.Equal(t, 1, deletes)
	})
}

func TestSearchIssues(t *testing.T) {
	var captured map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/api/3/search", func(w http.ResponseWriter, r *http.Request) {
		captured = decodeBody(t, r)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResponse{
			Total: 1,
			Issues: []Issue{{
				Key: "IT-9",
				Fields: map[string]any{
					"summary":  "Mailbox full",
					"status":   map[string]any{"name": "Open"},
					"assignee": map[string]any{"displayName": "Shari Clark"},
					"created":  "2026-02-01T09:00:00.000-0600",
				},
			}},
		})
	})
	svc, _ := newTestService(t, mux)

	result, err := svc.SearchIssues(context.Background(),
		"project = IT AND status = Open", 500, nil)
	require.NoError(t, err)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, "IT-9", result.Issues[0]["key"])
	assert.Equal(t, "Open", result.Issues[0]["status"])
	assert.Equal(t, "Shari Clark", result.Issues[0]["assignee"])

	// Requested page size is capped.
	assert.Equal(t, float64(maxSearchResults), captured["maxResults"])
	assert.Equal(t, "project = IT AND status = Open", captured["jql"])
}

func TestSearchUsers(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/user/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Shari Clark", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]User{{
			AccountID:    "5b10ac8d82e05b22cc7d4ef5",
			DisplayName:  "Shari Clark",
			EmailAddress: "sclark@example.com",
			Active:       true,
		}})
	})
	svc, _ := newTestService(t, mux)

	users, err := svc.SearchUsers(context.Background(), "Shari Clark", 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "5b10ac8d82e05b22cc7d4ef5", users[0].AccountID)
}

func TestJiraErrorSurfaced(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/api/3/issue", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Errors: map[string]string{"priority": "Priority is required"},
		})
	})
	svc, _ := newTestService(t, mux)

	_, err := svc.CreateIssue(context.Background(), "ITPROJ", "Task",
		map[string]any{"summary": "s"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Priority is required")
}
