package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Parent tables come first because of the foreign key constraints.
//
// reflection_scopes has no foreign key to herds, so deleting a herd leaves
// reflections pointing at the stale ID. author_display_name is copied from
// users at creation and not kept in sync with later renames.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS user_settings (
    user_id TEXT PRIMARY KEY,
    notification_cadence TEXT NOT NULL DEFAULT 'daily',
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS friendships (
    user_id TEXT NOT NULL,
    friend_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, friend_id),
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
    FOREIGN KEY (friend_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS herds (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    owner_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS herd_members (
    herd_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    role TEXT NOT NULL,
    joined_at INTEGER NOT NULL,
    PRIMARY KEY (herd_id, user_id),
    FOREIGN KEY (herd_id) REFERENCES herds(id) ON DELETE CASCADE,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reflections (
    id TEXT PRIMARY KEY,
    author_id TEXT NOT NULL,
    author_display_name TEXT NOT NULL DEFAULT '',
    high TEXT NOT NULL,
    low TEXT NOT NULL,
    buffalo TEXT NOT NULL,
    image TEXT,
    timestamp INTEGER NOT NULL,
    is_flagged INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reflection_scopes (
    reflection_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    scope_id TEXT NOT NULL,
    PRIMARY KEY (reflection_id, scope_id),
    FOREIGN KEY (reflection_id) REFERENCES reflections(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reflection_reactions (
    reflection_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    user_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (reflection_id, kind, user_id),
    FOREIGN KEY (reflection_id) REFERENCES reflections(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_reflections_author ON reflections(author_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_reflection_scopes_scope ON reflection_scopes(scope_id);
CREATE INDEX IF NOT EXISTS idx_reflection_reactions_reflection ON reflection_reactions(reflection_id);
CREATE INDEX IF NOT EXISTS idx_herd_members_user ON herd_members(user_id);
CREATE INDEX IF NOT EXISTS idx_friendships_user ON friendships(user_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
