// Package payload assembles create/update request bodies from friendly
// parameters and projects raw issue responses back into friendly output.
// It is the only place that decides where a parameter lands on the wire;
// the schema registry supplies the per-project field identifiers and the
// codec supplies the value shapes.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgoulet/jirabridge/internal/adf"
	"github.com/rgoulet/jirabridge/internal/codec"
	"github.com/rgoulet/jirabridge/internal/schema"
)

// UnknownFieldError reports a friendly parameter that is not in the
// project's schema. This is a caller/schema mismatch and is never
// swallowed: silently dropping the field would lose data.
type UnknownFieldError struct {
	Project string
	Field   string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf(
		"field %q is not mapped for project %s; use custom_fields with the raw field id",
		e.Field, e.Project,
	)
}

// MissingRequiredFieldError reports an absent required parameter. It is
// raised before any network interaction.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("required field %q is missing", e.Field)
}

// ErrNoFieldsToUpdate is returned by BuildUpdate when neither friendly
// nor raw parameters are supplied.
var ErrNoFieldsToUpdate = errors.New("at least one field must be provided to update")

// Build assembles the wire fields object for an issue create request.
// Mapped friendly parameters are encoded first; raw parameters are
// merged last and overwrite any mapped contribution targeting the same
// wire identifier. The escape hatch always wins.
func Build(project, issueType string, friendly, raw map[string]any) (map[string]any, error) {
	if project == "" {
		return nil, &MissingRequiredFieldError{Field: "project"}
	}
	if issueType == "" {
		return nil, &MissingRequiredFieldError{Field: "issue_type"}
	}
	if _, ok := friendly["summary"]; !ok {
		return nil, &MissingRequiredFieldError{Field: "summary"}
	}

	fields := map[string]any{
		"project":   map[string]any{"key": project},
		"issuetype": map[string]any{"name": issueType},
	}

	if err := encodeFriendly(project, friendly, fields); err != nil {
		return nil, err
	}
	mergeRaw(fields, raw)
	return fields, nil
}

// BuildUpdate assembles the wire fields object for an issue update.
// Only supplied parameters appear in the output; list fields replace
// existing values wholesale on the Jira side.
func BuildUpdate(project string, friendly, raw map[string]any) (map[string]any, error) {
	if project == "" {
		return nil, &MissingRequiredFieldError{Field: "project"}
	}
	if len(friendly) == 0 && len(raw) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	fields := map[string]any{}
	if err := encodeFriendly(project, friendly, fields); err != nil {
		return nil, err
	}
	mergeRaw(fields, raw)
	return fields, nil
}

// encodeFriendly routes each friendly parameter to its wire field.
// Standard Jira fields and the hierarchy links have fixed,
// project-independent shapes; everything else goes through the registry
// and codec.
func encodeFriendly(project string, friendly, fields map[string]any) error {
	for name, value := range friendly {
		switch name {
		case "summary":
			s, ok := value.(string)
			if !ok {
				return &codec.ValidationError{
					Project: project, Field: name,
					Reason: fmt.Sprintf("summary must be a string, got %T", value),
				}
			}
			fields["summary"] = s

		case "description":
			s, ok := value.(string)
			if !ok {
				return &codec.ValidationError{
					Project: project, Field: name,
					Reason: fmt.Sprintf("description must be plain text, got %T", value),
				}
			}
			fields["description"] = adf.FromText(s)

		case "priority":
			s, ok := value.(string)
			if !ok {
				return &codec.ValidationError{
					Project: project, Field: name,
					Reason: fmt.Sprintf("priority must be a string, got %T", value),
				}
			}
			fields["priority"] = map[string]any{"name": s}

		case "assignee":
			s, ok := value.(string)
			if !ok {
				return &codec.ValidationError{
					Project: project, Field: name,
					Reason: fmt.Sprintf("assignee must be an account id or email, got %T", value),
				}
			}
			fields["assignee"] = codec.WrapUser(s)

		case "labels":
			labels, err := stringList(project, name, value)
			if err != nil {
				return err
			}
			fields["labels"] = labels

		case "components":
			names, err := stringList(project, name, value)
			if err != nil {
				return err
			}
			comps := make([]any, 0, len(names))
			for _, n := range names {
				comps = append(comps, map[string]any{"name": n})
			}
			fields["components"] = comps

		case "parent_key":
			// Subtask parent: an object carrying the parent's key.
			s, ok := value.(string)
			if !ok {
				return &codec.ValidationError{
					Project: project, Field: name,
					Reason: fmt.Sprintf("parent_key must be an issue key, got %T", value),
				}
			}
			fields["parent"] = map[string]any{"key": s}

		case "epic_link":
			// Epic link: a bare string of the epic's key, written to
			// the project's epic-link custom field. Structurally
			// different from parent and kept that way.
			s, ok := value.(string)
			if !ok {
				return &codec.ValidationError{
					Project: project, Field: name,
					Reason: fmt.Sprintf("epic_link must be an issue key, got %T", value),
				}
			}
			desc, ok := schema.Lookup(project, "epic_link")
			if !ok {
				return &UnknownFieldError{Project: project, Field: name}
			}
			fields[desc.WireID] = s

		default:
			desc, ok := schema.Lookup(project, name)
			if !ok {
				return &UnknownFieldError{Project: project, Field: name}
			}
			wire, err := codec.Encode(project, desc, value)
			if err != nil {
				return err
			}
			fields[desc.WireID] = wire
		}
	}
	return nil
}

// mergeRaw applies the escape hatch: raw entries are keyed by literal
// wire identifier and unconditionally overwrite mapped output.
func mergeRaw(fields, raw map[string]any) {
	for wireID, value := range raw {
		fields[wireID] = value
	}
}

// Project converts a raw issue's wire fields into friendly output.
// Mapped custom fields appear under their friendly names with decoded
// values; null custom fields are skipped; every unmapped custom field is
// preserved verbatim in the "custom_fields" bag under its original wire
// identifier. Nothing is dropped, only re-labelled.
func Project(projectKey, issueKey string, rawFields map[string]any) (map[string]any, error) {
	out := map[string]any{
		"key": issueKey,
	}

	unmapped := map[string]any{}
	for wireID, value := range rawFields {
		if !strings.HasPrefix(wireID, "customfield_") {
			continue
		}
		if value == nil {
			continue
		}
		desc, ok := schema.ReverseLookup(projectKey, wireID)
		if !ok {
			unmapped[wireID] = value
			continue
		}
		decoded, err := codec.Decode(projectKey, desc, value)
		if err != nil {
			return nil, err
		}
		if decoded == codec.Unset {
			continue
		}
		out[desc.FriendlyName] = decoded
	}
	if len(unmapped) > 0 {
		out["custom_fields"] = unmapped
	}

	if err := projectStandard(rawFields, out); err != nil {
		return nil, err
	}
	return out, nil
}

// projectStandard copies the well-known issue fields into friendly keys.
func projectStandard(rawFields, out map[string]any) error {
	if s, ok := rawFields["summary"].(string); ok {
		out["summary"] = s
	}

	switch desc := rawFields["description"].(type) {
	case nil:
		// Absent or cleared description stays absent in output.
	case string:
		// Server/DC responses carry plain wiki markup here.
		out["description"] = desc
	default:
		doc, err := adf.FromWire(desc)
		if err != nil {
			return err
		}
		text, err := adf.ToText(doc)
		if err != nil {
			return err
		}
		out["description"] = text
	}

	if status, ok := rawFields["status"].(map[string]any); ok {
		out["status"] = map[string]any{
			"name": status["name"],
			"id":   status["id"],
		}
	}
	if it, ok := rawFields["issuetype"].(map[string]any); ok {
		out["issue_type"] = it["name"]
	}
	if prio, ok := rawFields["priority"].(map[string]any); ok {
		out["priority"] = prio["name"]
	}
	if user, ok := rawFields["assignee"].(map[string]any); ok {
		out["assignee"] = user["displayName"]
	}
	if user, ok := rawFields["reporter"].(map[string]any); ok {
		out["reporter"] = user["displayName"]
	}
	if res, ok := rawFields["resolution"].(map[string]any); ok {
		out["resolution"] = res["name"]
	}
	if created, ok := rawFields["created"].(string); ok {
		out["created"] = created
	}
	if updated, ok := rawFields["updated"].(string); ok {
		out["updated"] = updated
	}
	if labels, ok := rawFields["labels"].([]any); ok {
		out["labels"] = labels
	}
	if comps, ok := rawFields["components"].([]any); ok {
		names := make([]any, 0, len(comps))
		for _, c := range comps {
			if m, ok := c.(map[string]any); ok {
				names = append(names, m["name"])
			}
		}
		out["components"] = names
	}
	return nil
}

// stringList validates a friendly list parameter of plain strings.
func stringList(project, field string, value any) ([]string, error) {
	var elems []any
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		elems = v
	default:
		return nil, &codec.ValidationError{
			Project: project, Field: field,
			Reason: fmt.Sprintf("%s must be a list of strings, got %T", field, value),
		}
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok {
			return nil, &codec.ValidationError{
				Project: project, Field: field,
				Reason: fmt.Sprintf("%s elements must be strings, got %T", field, e),
			}
		}
		out = append(out, s)
	}
	return out, nil
}
