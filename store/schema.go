package store

// Schema creates the extswitch tables. Conditions and extension states are
// stored as JSON columns — they are always read and written as a unit with
// their group, never queried individually.
const Schema = `
CREATE TABLE IF NOT EXISTS profile_groups (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	enabled          INTEGER NOT NULL DEFAULT 1,
	priority         INTEGER NOT NULL DEFAULT 0,
	conditions       TEXT NOT NULL DEFAULT '[]',
	extension_states TEXT NOT NULL DEFAULT '[]',
	created_at       INTEGER NOT NULL,
	updated_at       INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profile_groups_priority
	ON profile_groups (priority DESC, updated_at DESC);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`
