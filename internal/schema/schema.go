// Package schema holds the per-project tables that map friendly field
// names to the tenant-specific custom field identifiers Jira uses on the
// wire. The tables are compiled in and never mutated after init, so
// concurrent lookups need no locking.
package schema

// FieldKind describes the wrapping convention a field's value must take
// on the wire.
type FieldKind int

const (
	// KindScalar passes the value through unchanged.
	KindScalar FieldKind = iota

	// KindNameWrapped wraps the value as {"name": value}. Used for
	// fields Jira tags by display name, such as priority.
	KindNameWrapped

	// KindValueWrapped wraps the value as {"value": value}. Used for
	// custom single-select fields.
	KindValueWrapped

	// KindListOfWrapped wraps each element of a list independently,
	// commonly as {"accountId": element} for people references.
	KindListOfWrapped

	// KindListOfStrings passes a list of strings through unchanged.
	KindListOfStrings

	// KindDatetime requires the value to already be a valid ISO-8601
	// timestamp string. Validation only, no normalization.
	KindDatetime

	// KindRawObject passes the value through unchanged. The caller is
	// responsible for supplying the exact wire shape.
	KindRawObject
)

// String returns the kind name used in error messages.
func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindNameWrapped:
		return "nameWrapped"
	case KindValueWrapped:
		return "valueWrapped"
	case KindListOfWrapped:
		return "listOfWrapped"
	case KindListOfStrings:
		return "listOfStrings"
	case KindDatetime:
		return "datetime"
	case KindRawObject:
		return "rawObject"
	default:
		return "unknown"
	}
}

// FieldDescriptor identifies one friendly field for one project.
type FieldDescriptor struct {
	// FriendlyName is the stable parameter name exposed to callers,
	// e.g. "work_type".
	FriendlyName string

	// WireID is the opaque tenant-specific field identifier,
	// e.g. "customfield_10055".
	WireID string

	// Kind is the wire wrapping convention for the field's value.
	Kind FieldKind
}

// Lookup returns the descriptor for a friendly field name within a
// project. The second return is false when the project has no such
// field; that is not an error, optional fields simply aren't mapped
// everywhere.
func Lookup(project, friendlyName string) (FieldDescriptor, bool) {
	fields, ok := projectFields[project]
	if !ok {
		return FieldDescriptor{}, false
	}
	desc, ok := fields[friendlyName]
	return desc, ok
}

// ReverseLookup returns the descriptor whose wire identifier matches
// wireID within a project. Used when projecting a raw issue back to
// friendly output. A wireID may map to different friendly names in
// different projects.
func ReverseLookup(project, wireID string) (FieldDescriptor, bool) {
	fields, ok := projectFields[project]
	if !ok {
		return FieldDescriptor{}, false
	}
	for _, desc := range fields {
		if desc.WireID == wireID {
			return desc, true
		}
	}
	return FieldDescriptor{}, false
}

// Projects returns the project keys that have a custom field table.
func Projects() []string {
	keys := make([]string, 0, len(projectFields))
	for k := range projectFields {
		keys = append(keys, k)
	}
	return keys
}
