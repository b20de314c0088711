package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS auth (
	slot             INTEGER PRIMARY KEY CHECK(slot = 1),
	phone_number     TEXT NOT NULL,
	is_authenticated INTEGER NOT NULL DEFAULT 0 CHECK(is_authenticated IN (0, 1)),
	authenticated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS profile (
	slot                    INTEGER PRIMARY KEY CHECK(slot = 1),
	phone_number            TEXT NOT NULL,
	is_authenticated        INTEGER NOT NULL DEFAULT 0,
	authenticated_at        DATETIME NOT NULL,
	locations               TEXT NOT NULL DEFAULT '[]',
	onboarding_completed    INTEGER NOT NULL DEFAULT 0 CHECK(onboarding_completed IN (0, 1)),
	onboarding_completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS messages (
	owner        TEXT NOT NULL,
	id           TEXT NOT NULL,
	text         TEXT NOT NULL,
	timestamp    TEXT NOT NULL DEFAULT '',
	is_from_user INTEGER NOT NULL DEFAULT 0,
	is_delivered INTEGER NOT NULL DEFAULT 0,
	is_read      INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (owner, id)
);

CREATE INDEX IF NOT EXISTS idx_messages_owner ON messages(owner);

CREATE TABLE IF NOT EXISTS notifications (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	message      TEXT NOT NULL,
	time         TEXT NOT NULL DEFAULT '',
	click_action TEXT NOT NULL DEFAULT '',
	navigate_to  TEXT NOT NULL DEFAULT '',
	read         INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
