package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// Tables that must exist before ingestion may run.
var requiredTables = []string{"issues", "comments", "ingest_runs"}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
	issue_id    INTEGER PRIMARY KEY,
	subject     TEXT NOT NULL DEFAULT '',
	product     TEXT NOT NULL DEFAULT '',
	component   TEXT NOT NULL DEFAULT '',
	severity    TEXT NOT NULL DEFAULT '',
	priority    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	assignee    TEXT NOT NULL DEFAULT '',
	is_security INTEGER NOT NULL DEFAULT 0 CHECK(is_security IN (0, 1)),
	last_update DATETIME NOT NULL
);

-- No foreign key on issue_id: comments can arrive before the
-- metadata row of their issue.
CREATE TABLE IF NOT EXISTS comments (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	issue_id      INTEGER NOT NULL,
	comment_index INTEGER NOT NULL,
	author        TEXT NOT NULL DEFAULT '',
	body          TEXT NOT NULL DEFAULT '',
	received_at   DATETIME NOT NULL,
	dedup_key     TEXT NOT NULL,
	UNIQUE(issue_id, dedup_key)
);

CREATE INDEX IF NOT EXISTS idx_comments_issue_id ON comments(issue_id, comment_index);
CREATE INDEX IF NOT EXISTS idx_issues_status ON issues(status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS ingest_runs (
	id                TEXT PRIMARY KEY,
	archive           TEXT NOT NULL,
	started_at        DATETIME NOT NULL,
	finished_at       DATETIME,
	messages          INTEGER NOT NULL DEFAULT 0,
	issues_inserted   INTEGER NOT NULL DEFAULT 0,
	issues_updated    INTEGER NOT NULL DEFAULT 0,
	comments_inserted INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_ingest_runs_started ON ingest_runs(started_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
