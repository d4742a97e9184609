package journal

// migration is one versioned schema change.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order; each script records its own version
// row so reruns are no-ops.
var migrations = []migration{
	{
		version: 1,
		sql: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY
			);

			CREATE TABLE IF NOT EXISTS entries (
				id TEXT PRIMARY KEY,
				operation TEXT NOT NULL,
				issue_key TEXT NOT NULL,
				detail TEXT NOT NULL DEFAULT '{}',
				created_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_entries_issue_key
				ON entries(issue_key);
			CREATE INDEX IF NOT EXISTS idx_entries_created_at
				ON entries(created_at);

			INSERT INTO schema_version (version) VALUES (1);
		`,
	},
}
