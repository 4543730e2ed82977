package db

var Schema string = `
CREATE TABLE IF NOT EXISTS runs
(
    id   INTEGER PRIMARY KEY,

    run_id  TEXT NOT NULL,
    version TEXT DEFAULT 'v1',
    dataset TEXT DEFAULT 'mock',
    mode    TEXT DEFAULT 'offline',

    passed INTEGER,
    failed INTEGER,
    total  INTEGER,

    payload TEXT,

    created_at INTEGER DEFAULT (strftime('%s', 'now')),

    CONSTRAINT unique_run_id UNIQUE (run_id)

);`
