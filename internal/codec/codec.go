// Package codec converts field values between the simple shapes callers
// supply and the wire shapes Jira expects for each field kind. It never
// coerces: a value whose shape does not match the declared kind is a
// validation failure, not a best-effort guess.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/rgoulet/jirabridge/internal/schema"
)

// ValidationError reports a field value whose shape does not match the
// kind declared in the project schema.
type ValidationError struct {
	Project string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf(
		"invalid value for field %q in project %s: %s",
		e.Field, e.Project, e.Reason,
	)
}

// UnsetValue marks a wire value that was null or absent. It is distinct
// from an empty string and an empty list so callers can tell "cleared"
// from "empty".
type UnsetValue struct{}

func (UnsetValue) String() string { return "<unset>" }

// Unset is the singleton marker returned by Decode for null wire values.
var Unset = UnsetValue{}

// datetimeLayouts are the timestamp forms accepted for datetime fields.
// Jira uses both full timestamps and bare dates depending on the field's
// screen configuration.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02",
}

// Encode converts a caller-supplied value into the wire shape declared
// by the descriptor's kind. List order is preserved and duplicates are
// kept.
func Encode(project string, desc schema.FieldDescriptor, value any) (any, error) {
	switch desc.Kind {
	case schema.KindScalar:
		if !isScalar(value) {
			return nil, shapeErr(project, desc, value, "a scalar")
		}
		return value, nil

	case schema.KindNameWrapped:
		s, ok := value.(string)
		if !ok {
			return nil, shapeErr(project, desc, value, "a string name")
		}
		return map[string]any{"name": s}, nil

	case schema.KindValueWrapped:
		s, ok := value.(string)
		if !ok {
			return nil, shapeErr(project, desc, value, "a string option value")
		}
		return map[string]any{"value": s}, nil

	case schema.KindListOfWrapped:
		elems, ok := toList(value)
		if !ok {
			return nil, shapeErr(project, desc, value, "a list")
		}
		wrapped := make([]any, 0, len(elems))
		for _, e := range elems {
			switch v := e.(type) {
			case map[string]any:
				// Already wire-shaped, e.g. {"accountId": "..."}.
				wrapped = append(wrapped, v)
			case string:
				wrapped = append(wrapped, WrapUser(v))
			default:
				return nil, shapeErr(project, desc, e,
					"list elements that are objects or strings")
			}
		}
		return wrapped, nil

	case schema.KindListOfStrings:
		elems, ok := toList(value)
		if !ok {
			return nil, shapeErr(project, desc, value, "a list of strings")
		}
		out := make([]string, 0, len(elems))
		for _, e := range elems {
			s, ok := e.(string)
			if !ok {
				return nil, shapeErr(project, desc, e, "string list elements")
			}
			out = append(out, s)
		}
		return out, nil

	case schema.KindDatetime:
		s, ok := value.(string)
		if !ok {
			return nil, shapeErr(project, desc, value, "an ISO-8601 timestamp string")
		}
		if !validTimestamp(s) {
			return nil, &ValidationError{
				Project: project,
				Field:   desc.FriendlyName,
				Reason:  fmt.Sprintf("%q is not a parseable ISO-8601 timestamp", s),
			}
		}
		// Validation only. The string goes to the wire untouched.
		return s, nil

	case schema.KindRawObject:
		return value, nil

	default:
		return nil, &ValidationError{
			Project: project,
			Field:   desc.FriendlyName,
			Reason:  fmt.Sprintf("unsupported field kind %v", desc.Kind),
		}
	}
}

// Decode projects a wire value back to its friendly shape. Null wire
// values decode to Unset. Wrapper kinds extract the inner value and
// discard the wrapper.
func Decode(project string, desc schema.FieldDescriptor, wire any) (any, error) {
	if wire == nil {
		return Unset, nil
	}

	switch desc.Kind {
	case schema.KindScalar, schema.KindListOfStrings, schema.KindDatetime,
		schema.KindRawObject:
		return wire, nil

	case schema.KindNameWrapped:
		return unwrap(project, desc, wire, "name")

	case schema.KindValueWrapped:
		return unwrap(project, desc, wire, "value")

	case schema.KindListOfWrapped:
		elems, ok := toList(wire)
		if !ok {
			return nil, shapeErr(project, desc, wire, "a list of wrapped objects")
		}
		out := make([]any, 0, len(elems))
		for _, e := range elems {
			out = append(out, unwrapElement(e))
		}
		return out, nil

	default:
		return nil, &ValidationError{
			Project: project,
			Field:   desc.FriendlyName,
			Reason:  fmt.Sprintf("unsupported field kind %v", desc.Kind),
		}
	}
}

// WrapUser builds the wire shape for a single person reference. Jira
// accepts either an account ID or an email address; the presence of "@"
// decides which key is used.
func WrapUser(ref string) map[string]any {
	if strings.Contains(ref, "@") {
		return map[string]any{"emailAddress": ref}
	}
	return map[string]any{"accountId": ref}
}

// unwrap extracts the named inner value from a wrapped object.
func unwrap(project string, desc schema.FieldDescriptor, wire any, key string) (any, error) {
	m, ok := wire.(map[string]any)
	if !ok {
		return nil, shapeErr(project, desc, wire,
			fmt.Sprintf("an object wrapped as {%q: ...}", key))
	}
	inner, ok := m[key]
	if !ok {
		return nil, &ValidationError{
			Project: project,
			Field:   desc.FriendlyName,
			Reason:  fmt.Sprintf("wire object is missing the %q key", key),
		}
	}
	return inner, nil
}

// unwrapElement extracts the identifying value from one element of a
// wrapped list. Unknown element shapes pass through unchanged rather
// than failing the whole list.
func unwrapElement(e any) any {
	m, ok := e.(map[string]any)
	if !ok {
		return e
	}
	for _, key := range []string{"accountId", "emailAddress", "value", "name"} {
		if inner, ok := m[key]; ok {
			return inner
		}
	}
	return e
}

func validTimestamp(s string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

// toList normalizes the slice forms callers and encoding/json produce.
func toList(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	default:
		return nil, false
	}
}

func shapeErr(project string, desc schema.FieldDescriptor, got any, want string) *ValidationError {
	return &ValidationError{
		Project: project,
		Field:   desc.FriendlyName,
		Reason: fmt.Sprintf(
			"kind %s expects %s, got %T", desc.Kind, want, got,
		),
	}
}
