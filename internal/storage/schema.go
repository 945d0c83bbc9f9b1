package storage

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- one row per development application, first write wins
CREATE TABLE IF NOT EXISTS data (
    council_reference TEXT PRIMARY KEY,
    address TEXT NOT NULL,
    description TEXT NOT NULL,
    info_url TEXT,
    comment_url TEXT,
    date_scraped TEXT,
    date_received TEXT,
    legal_description TEXT
);
`
