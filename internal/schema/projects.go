package schema

// projectFields is the static per-project field table, keyed by project
// key and then by friendly name. Two projects may map the same friendly
// name to different wire identifiers, and the same wire identifier may
// appear under different friendly names across projects.
//
// Within one project the friendly names are unique by construction of
// the map literal.
var projectFields = map[string]map[string]FieldDescriptor{
	// ITHELP: service desk project.
	"ITHELP": fields(
		FieldDescriptor{"work_type", "customfield_10055", KindValueWrapped},
	),

	// ITCM: change management project.
	"ITCM": fields(
		FieldDescriptor{"work_type", "customfield_10055", KindValueWrapped},
		FieldDescriptor{"risk_level", "customfield_10059", KindValueWrapped},
		FieldDescriptor{"approvers", "customfield_10003", KindListOfWrapped},
		FieldDescriptor{"affected_systems", "customfield_10060", KindListOfStrings},
		FieldDescriptor{"implementation_window_start", "customfield_10061", KindDatetime},
		FieldDescriptor{"implementation_window_end", "customfield_10062", KindDatetime},
		FieldDescriptor{"rollback_plan", "customfield_10063", KindScalar},
		FieldDescriptor{"approval_date", "customfield_10068", KindDatetime},
	),

	// IT: JSM service desk. Workflows differ per issue type; the
	// transition resolver discovers legal moves at request time.
	"IT": fields(
		FieldDescriptor{"impact", "customfield_10004", KindValueWrapped},
		FieldDescriptor{"urgency", "customfield_10041", KindValueWrapped},
		FieldDescriptor{"severity", "customfield_10048", KindValueWrapped},
		FieldDescriptor{"category", "customfield_10087", KindValueWrapped},
		FieldDescriptor{"affected_services", "customfield_10042", KindListOfStrings},
		FieldDescriptor{"affected_hardware", "customfield_10049", KindListOfStrings},
		FieldDescriptor{"pending_reason", "customfield_10044", KindScalar},
		FieldDescriptor{"request_type", "customfield_10010", KindRawObject},
		FieldDescriptor{"organizations", "customfield_10002", KindListOfStrings},
		FieldDescriptor{"request_participants", "customfield_10034", KindListOfWrapped},
		FieldDescriptor{"major_incident", "customfield_10045", KindValueWrapped},
		FieldDescriptor{"responders", "customfield_10047", KindListOfWrapped},
		FieldDescriptor{"approvers", "customfield_10003", KindListOfWrapped},
		FieldDescriptor{"satisfaction", "customfield_10035", KindRawObject},
		FieldDescriptor{"flagged", "customfield_10021", KindRawObject},
		FieldDescriptor{"team", "customfield_10001", KindScalar},
	),

	// ITPROJECT: team-managed kanban project. Epic hierarchy uses the
	// parent field, not epic_link; epic_link stays mapped so reads of
	// legacy issues still decode.
	"ITPROJECT": fields(
		FieldDescriptor{"epic_name", "customfield_10011", KindScalar},
		FieldDescriptor{"epic_link", "customfield_10014", KindScalar},
		FieldDescriptor{"start_date", "customfield_10015", KindDatetime},
		FieldDescriptor{"story_points", "customfield_10016", KindScalar},
		FieldDescriptor{"sprint", "customfield_10020", KindScalar},
		FieldDescriptor{"flagged", "customfield_10021", KindRawObject},
		FieldDescriptor{"team", "customfield_10001", KindScalar},
	),

	// ITPROJ and ITPMO have no custom field mappings; friendly custom
	// params there must go through the raw custom_fields escape hatch.
	"ITPROJ": {},
	"ITPMO":  {},
}

// fields builds a friendly-name-keyed map from a list of descriptors.
func fields(descs ...FieldDescriptor) map[string]FieldDescriptor {
	m := make(map[string]FieldDescriptor, len(descs))
	for _, d := range descs {
		m[d.FriendlyName] = d
	}
	return m
}
