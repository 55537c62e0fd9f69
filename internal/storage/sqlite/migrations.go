package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// bill_activities deliberately has no foreign key to bills: the audit trail
// must survive bill deletion.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    avatar_url TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS connection_codes (
    code TEXT PRIMARY KEY,
    created_by TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    expires_at INTEGER NOT NULL,
    used_by TEXT,
    used_at INTEGER,
    FOREIGN KEY (created_by) REFERENCES users(user_id)
);

CREATE TABLE IF NOT EXISTS shared_connections (
    id TEXT PRIMARY KEY,
    user_id_1 TEXT NOT NULL,
    user_id_2 TEXT NOT NULL,
    user_1_accepted INTEGER NOT NULL DEFAULT 0,
    user_2_accepted INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    created_by TEXT NOT NULL,
    shared_connection_id TEXT,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    due_date TEXT NOT NULL,
    frequency TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    paid_by_user_1 INTEGER NOT NULL DEFAULT 0,
    paid_by_user_2 INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_splits (
    bill_id TEXT PRIMARY KEY,
    shared_connection_id TEXT NOT NULL,
    user_1_percentage TEXT NOT NULL,
    user_2_percentage TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_activities (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    action TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '{}',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notification_preferences (
    user_id TEXT PRIMARY KEY,
    days_before_due TEXT NOT NULL DEFAULT '[1]',
    notify_on_paid INTEGER NOT NULL DEFAULT 1,
    notify_on_overdue INTEGER NOT NULL DEFAULT 1,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_created_by ON bills(created_by);
CREATE INDEX IF NOT EXISTS idx_bills_connection ON bills(shared_connection_id);
CREATE INDEX IF NOT EXISTS idx_connections_user_1 ON shared_connections(user_id_1);
CREATE INDEX IF NOT EXISTS idx_connections_user_2 ON shared_connections(user_id_2);
CREATE INDEX IF NOT EXISTS idx_activities_bill_id ON bill_activities(bill_id);
CREATE INDEX IF NOT EXISTS idx_codes_created_by ON connection_codes(created_by);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
