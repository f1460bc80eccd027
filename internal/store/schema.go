package store

// Money columns hold decimal strings in SQLite and NUMERIC in PostgreSQL.
// Timestamps are UTC RFC3339 text in both so range filters compare as strings.

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    name         TEXT NOT NULL,
    category     TEXT NOT NULL,
    institution  TEXT NOT NULL DEFAULT '',
    balance      TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS room (
    user_id      TEXT NOT NULL,
    year         INTEGER NOT NULL,
    category     TEXT NOT NULL,
    amount       TEXT NOT NULL,
    PRIMARY KEY (user_id, year, category)
);

CREATE TABLE IF NOT EXISTS dependents (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    name         TEXT NOT NULL,
    birth_year   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS snapshots (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    taken_at     TEXT NOT NULL,
    total        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);
CREATE INDEX IF NOT EXISTS idx_dependents_user ON dependents(user_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_user_time ON snapshots(user_id, taken_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    name         TEXT NOT NULL,
    category     TEXT NOT NULL,
    institution  TEXT NOT NULL DEFAULT '',
    balance      NUMERIC(18,2) NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS room (
    user_id      TEXT NOT NULL,
    year         INTEGER NOT NULL,
    category     TEXT NOT NULL,
    amount       NUMERIC(18,2) NOT NULL,
    PRIMARY KEY (user_id, year, category)
);

CREATE TABLE IF NOT EXISTS dependents (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    name         TEXT NOT NULL,
    birth_year   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS snapshots (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    taken_at     TEXT NOT NULL,
    total        NUMERIC(18,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);
CREATE INDEX IF NOT EXISTS idx_dependents_user ON dependents(user_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_user_time ON snapshots(user_id, taken_at);
`
