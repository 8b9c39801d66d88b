package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create token slots",
		SQL: `
			CREATE TABLE token_slots (
				slot        TEXT PRIMARY KEY,
				data        BLOB NOT NULL,
				updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
	{
		Version: 2,
		Name:    "create chat log",
		SQL: `
			CREATE TABLE patients (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				age         INTEGER NOT NULL,
				gender      TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE chat_sessions (
				id          TEXT PRIMARY KEY,
				patient_id  TEXT REFERENCES patients(id) ON DELETE SET NULL,
				started_at  TEXT NOT NULL,
				ended_at    TEXT
			);

			CREATE INDEX idx_chat_sessions_patient ON chat_sessions (patient_id);

			CREATE TABLE chat_messages (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL
			);

			CREATE INDEX idx_chat_messages_session ON chat_messages (session_id, id);
		`,
	},
}
