package database

const historySchema = `
-- One aggregate observation per run
CREATE TABLE history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	date TIMESTAMP NOT NULL,
	total_citations INTEGER NOT NULL,
	h_index INTEGER NOT NULL,
	i10_index INTEGER NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX idx_history_date ON history(date);
`

// migrations contains incremental schema changes
// Each migration is applied in order based on the current user_version
// migrations[0] is empty because version 0 uses the base schema
var migrations = []string{
	"", // Version 0 is the base schema, so migrations[0] is empty
}
